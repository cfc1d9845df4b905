package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/config"
	handler "github.com/Harsh-BH/pairexec/internal/delivery/http"
	"github.com/Harsh-BH/pairexec/internal/executor"
	"github.com/Harsh-BH/pairexec/internal/publisher"
	"github.com/Harsh-BH/pairexec/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/pairexec/internal/repository/redis"
	"github.com/Harsh-BH/pairexec/internal/suggest"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting pairexec API server", zap.String("version", version))

	gin.SetMode(cfg.Server.GinMode)

	engine := executor.NewEngine(cfg.Executor(), logger.Named("executor"))
	for _, lang := range engine.Languages() {
		logger.Info("Language runner",
			zap.String("language", string(lang.Name)),
			zap.String("toolchain", lang.Toolchain),
			zap.Bool("available", lang.Available),
		)
	}

	deps := handler.RouterDeps{
		Execute:        usecase.NewExecuteCodeUsecase(engine, logger),
		Suggest:        usecase.NewSuggestUsecase(suggest.New()),
		Languages:      engine,
		Checks:         map[string]handler.HealthChecker{},
		Logger:         logger,
		Version:        version,
		RateLimit:      cfg.Server.RateLimit,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	if cfg.Queue.Enabled {
		closeQueue, err := wireQueue(context.Background(), cfg, logger, &deps)
		if err != nil {
			logger.Fatal("Failed to set up async submissions", zap.Error(err))
		}
		defer closeQueue()
	} else {
		logger.Info("Queue disabled, serving synchronous execution only")
	}

	router := handler.NewRouter(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	// In-flight executions finish within their own timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Exec.Timeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}

// wireQueue connects the job store, cache and broker and enables the
// submission routes. The returned func releases the connections.
func wireQueue(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps *handler.RouterDeps) (func(), error) {
	db, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	closers := []func(){db.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := db.Ping(ctx); err != nil {
		closeAll()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		closeAll()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	closers = append(closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		closeAll()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger.Named("amqp"))
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	closers = append(closers, func() { _ = pub.Close() })

	jobRepo := postgres.NewPostgresJobRepository(db)
	jobCache := redisrepo.NewRedisJobCache(rdb, redisrepo.DefaultJobCacheTTL)

	deps.Submit = usecase.NewSubmitJobUsecase(jobRepo, pub, logger)
	deps.GetJob = usecase.NewGetJobUsecase(jobRepo, jobCache, logger)
	deps.Checks["postgres"] = jobRepo
	deps.Checks["redis"] = jobCache
	deps.Checks["rabbitmq"] = pub

	logger.Info("Async submissions enabled")
	return closeAll, nil
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
