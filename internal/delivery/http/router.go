package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/delivery/http/middleware"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

const submissionsPath = "/api/v1/submissions"

// RouterDeps carries everything the router wires into handlers. Submit and
// GetJob are nil when the queue is disabled, and the submission routes are
// left out.
type RouterDeps struct {
	Execute   *usecase.ExecuteCodeUsecase
	Suggest   *usecase.SuggestUsecase
	Languages LanguageLister
	Submit    *usecase.SubmitJobUsecase
	GetJob    *usecase.GetJobUsecase
	Checks    map[string]HealthChecker
	Logger    *zap.Logger

	Version        string
	RateLimit      int
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.Logger(logger))
	if deps.MaxBodyBytes > 0 {
		router.Use(middleware.BodySizeLimit(deps.MaxBodyBytes))
	}

	limit := middleware.RateLimiter(deps.RateLimit)

	healthHandler := NewHealthHandler(deps.Checks, logger)
	execHandler := NewExecuteHandler(deps.Execute, logger)
	completeHandler := NewAutocompleteHandler(deps.Suggest)

	endpoints := gin.H{
		"execute":      "/execute",
		"autocomplete": "/autocomplete",
		"languages":    "/api/v1/languages",
		"health":       "/health",
	}

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Unversioned routes used by the editor.
	router.GET("/health", healthHandler.Health)
	router.POST("/execute", limit, execHandler.Execute)
	router.POST("/autocomplete", completeHandler.Suggest)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check (no rate limiting)
		v1.GET("/health", healthHandler.Health)

		// Languages
		langHandler := NewLanguageHandler(deps.Languages)
		v1.GET("/languages", langHandler.List)

		v1.POST("/execute", limit, execHandler.Execute)
		v1.POST("/autocomplete", completeHandler.Suggest)

		if deps.Submit != nil && deps.GetJob != nil {
			// Submissions (with rate limiting)
			subHandler := NewSubmissionHandler(deps.Submit, deps.GetJob, logger)
			v1.POST("/submissions", limit, subHandler.Submit)
			v1.GET("/submissions/:id", subHandler.GetByID)

			// WebSocket for real-time updates
			wsHandler := NewWebSocketHandler(deps.GetJob, deps.AllowedOrigins, logger)
			v1.GET("/submissions/:id/stream", wsHandler.Stream)

			endpoints["submissions"] = submissionsPath
		}
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}
	router.GET("/", NewInfoHandler(version, endpoints).Root)

	return router
}
