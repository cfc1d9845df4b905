package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/metrics"
)

// Engine runs untrusted snippets in child processes. Every call is
// independent: it gets its own workspace, its own process group and its own
// deadline. Engine is safe for concurrent use.
type Engine struct {
	cfg      Config
	runners  map[domain.Language]Runner
	lookPath func(file string) (string, error)
	sem      *semaphore.Weighted
	logger   *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRunner registers r for its language, replacing the default runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		e.runners[r.Language()] = r
	}
}

// WithLookPath replaces the toolchain resolver (exec.LookPath by default).
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(e *Engine) {
		e.lookPath = fn
	}
}

// NewEngine creates an engine with the default runner table.
func NewEngine(cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:      cfg,
		runners:  make(map[domain.Language]Runner),
		lookPath: exec.LookPath,
		logger:   logger,
	}
	for _, r := range DefaultRunners(cfg.Toolchains) {
		e.runners[r.Language()] = r
	}
	if cfg.MaxConcurrent > 0 {
		e.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Execute runs req and returns its normalized result. It never returns nil
// and never panics: every failure is reported through the result.
func (e *Engine) Execute(ctx context.Context, req *domain.ExecutionRequest) (result *domain.ExecutionResult) {
	execID := uuid.NewString()
	startTime := time.Now()
	label := "unsupported"

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Execution panic recovered",
				zap.String("exec_id", execID),
				zap.Any("panic", r),
			)
			result = infraErrorResult(fmt.Errorf("internal panic: %v", r))
		}
		result = e.finalize(result)
		e.observe(execID, label, result, time.Since(startTime))
	}()

	if req == nil {
		return infraErrorResult(errors.New("nil execution request"))
	}

	lang, ok := domain.ParseLanguage(req.Language)
	if !ok {
		return unsupportedResult(req.Language)
	}
	runner, ok := e.runners[lang]
	if !ok {
		return unsupportedResult(req.Language)
	}
	label = string(lang)

	if e.sem != nil {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			return infraErrorResult(fmt.Errorf("wait for execution slot: %w", err))
		}
		defer e.sem.Release(1)
	}

	metrics.ExecutionsInFlight.Inc()
	defer metrics.ExecutionsInFlight.Dec()

	return e.run(ctx, execID, runner, req)
}

// run drives one runner through resolve, materialize, build, run and cleanup.
func (e *Engine) run(ctx context.Context, execID string, runner Runner, req *domain.ExecutionRequest) *domain.ExecutionResult {
	tc := runner.Toolchain()
	toolchain, err := e.lookPath(tc.Name)
	if err != nil {
		e.logger.Warn("Toolchain not found",
			zap.String("exec_id", execID),
			zap.String("toolchain", tc.Name),
			zap.Error(err),
		)
		return toolchainMissingResult(tc)
	}

	ws, err := NewWorkspace(e.cfg.TempDir, runner.Language())
	if err != nil {
		return artifactErrorResult(err)
	}
	defer e.cleanup(execID, ws)

	if err := ws.Materialize(runner.SourceFile(), req.Code); err != nil {
		return artifactErrorResult(err)
	}

	env := buildEnv(runner.Env())

	if argv := runner.BuildCommand(toolchain, ws); argv != nil {
		build, err := e.spawn(ctx, argv, ws.Dir, env, "", nil)
		if err != nil {
			return infraErrorResult(fmt.Errorf("compile: %w", err))
		}
		if build.TimedOut {
			return timeoutResult(e.cfg.Timeout)
		}
		if build.ExitCode != 0 {
			return compilationErrorResult(build)
		}
	}

	proc, err := e.spawn(ctx, runner.RunCommand(toolchain, ws), ws.Dir, env, req.Stdin, &e.cfg.Limits)
	if err != nil {
		return infraErrorResult(err)
	}
	if proc.TimedOut {
		return timeoutResult(e.cfg.Timeout)
	}
	return completedResult(proc)
}

func (e *Engine) cleanup(execID string, ws *Workspace) {
	if err := ws.Cleanup(); err != nil {
		metrics.ArtifactCleanupFailures.Inc()
		e.logger.Error("Failed to remove workspace",
			zap.String("exec_id", execID),
			zap.String("dir", ws.Dir),
			zap.Error(err),
		)
	}
}

// finalize applies the output cap and the success invariant.
func (e *Engine) finalize(res *domain.ExecutionResult) *domain.ExecutionResult {
	if res == nil {
		res = infraErrorResult(errors.New("no result produced"))
	}
	res.Output = truncate(res.Output, e.cfg.MaxOutputBytes)
	res.Error = truncate(res.Error, e.cfg.MaxOutputBytes)
	res.Success = res.ExitCode == 0
	return res
}

func (e *Engine) observe(execID, language string, res *domain.ExecutionResult, elapsed time.Duration) {
	metrics.ExecutionsTotal.WithLabelValues(language, string(res.Status)).Inc()
	metrics.ExecutionDuration.WithLabelValues(language).Observe(elapsed.Seconds())
	if res.Status == domain.StatusInternalError || res.Status == domain.StatusArtifactError {
		metrics.InfraFailures.Inc()
	}

	e.logger.Debug("Execution completed",
		zap.String("exec_id", execID),
		zap.String("language", language),
		zap.String("status", string(res.Status)),
		zap.Int("exit_code", res.ExitCode),
		zap.Float64("execution_time", res.ExecutionTimeSeconds),
		zap.Int("memory_used_kb", res.MemoryUsedKB),
		zap.Duration("elapsed", elapsed),
	)
}

// Languages describes the runner table and whether each toolchain resolves
// on this host.
func (e *Engine) Languages() []domain.LanguageInfo {
	infos := make([]domain.LanguageInfo, 0, len(e.runners))
	for _, lang := range domain.SupportedLanguages {
		r, ok := e.runners[lang]
		if !ok {
			continue
		}
		_, err := e.lookPath(r.Toolchain().Name)
		infos = append(infos, domain.LanguageInfo{
			Name:      lang,
			Display:   lang.DisplayName(),
			Aliases:   lang.Aliases(),
			Toolchain: r.Toolchain().Name,
			Compiled:  r.Compiled(),
			Available: err == nil,
		})
	}
	return infos
}
