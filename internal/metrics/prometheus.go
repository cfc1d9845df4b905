package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExecutionsTotal counts the total number of code executions by language and status.
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairexec_executions_total",
			Help: "Total number of code executions",
		},
		[]string{"language", "status"},
	)

	// ExecutionDuration tracks the duration of code executions in seconds.
	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairexec_execution_duration_seconds",
			Help:    "Duration of code executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"language"},
	)

	// ExecutionsInFlight tracks executions currently holding a child process.
	ExecutionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairexec_executions_in_flight",
			Help: "Number of executions currently running",
		},
	)

	// InfraFailures counts infrastructure failures (not user code errors).
	InfraFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairexec_infra_failures_total",
			Help: "Total number of executions that failed for infrastructure reasons",
		},
	)

	// ArtifactCleanupFailures counts workspaces that could not be removed.
	ArtifactCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairexec_artifact_cleanup_failures_total",
			Help: "Total number of temporary workspaces that failed to be removed",
		},
	)

	// SuggestionsTotal counts autocomplete requests by language.
	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairexec_suggestion_requests_total",
			Help: "Total number of autocomplete requests",
		},
		[]string{"language"},
	)

	// WorkersActive tracks the number of queue workers busy with a job.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairexec_workers_active",
			Help: "Number of currently active worker goroutines",
		},
	)

	// JobsTotal counts queued jobs by how the worker settled the message.
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairexec_jobs_total",
			Help: "Total number of queued jobs processed by outcome",
		},
		[]string{"outcome"},
	)
)
