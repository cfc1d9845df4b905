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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/config"
	amqpdelivery "github.com/Harsh-BH/pairexec/internal/delivery/amqp"
	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/executor"
	"github.com/Harsh-BH/pairexec/internal/pool"
	"github.com/Harsh-BH/pairexec/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/pairexec/internal/repository/redis"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zap.Must(newLogger(cfg.Log.Development))
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Worker failed", zap.Error(err))
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting pairexec worker", zap.Int("pool_size", cfg.Worker.PoolSize))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := openRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	engine := executor.NewEngine(cfg.Executor(), logger.Named("executor"))
	executeUC := usecase.NewExecuteJobUsecase(
		postgres.NewPostgresJobRepository(db),
		redisrepo.NewRedisIdempotencyStore(rdb),
		engine,
		logger,
	)

	// The buffer lets the consumer stay one delivery ahead of each worker.
	jobs := make(chan *domain.JobMessage, cfg.Worker.PoolSize*2)

	consumer, err := amqpdelivery.NewConsumer(cfg.RabbitMQ.URL, jobs, logger.Named("amqp"))
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer consumer.Close()

	workers := pool.NewWorkerPool(cfg.Worker.PoolSize, jobs, executeUC, logger.Named("pool"))
	workers.Start(ctx)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("AMQP consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	metricsSrv := serveMetrics(cfg.Worker.MetricsPort, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Shutting down worker", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Warn("Shutting down worker after consumer failure")
	}
	cancel()

	// In-flight jobs finish before their deliveries are settled.
	workers.Stop()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics server shutdown", zap.Error(err))
	}

	logger.Info("Worker stopped")
	return nil
}

func openPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func serveMetrics(port int, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()
	return srv
}
