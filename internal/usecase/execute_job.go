package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

// ExecuteJobUsecase runs one queued job on the worker side.
type ExecuteJobUsecase struct {
	repo       repository.JobRepository
	idempotent repository.IdempotencyStore
	executor   repository.Executor
	logger     *zap.Logger
}

func NewExecuteJobUsecase(
	repo repository.JobRepository,
	idempotent repository.IdempotencyStore,
	exec repository.Executor,
	logger *zap.Logger,
) *ExecuteJobUsecase {
	return &ExecuteJobUsecase{repo: repo, idempotent: idempotent, executor: exec, logger: logger}
}

// Execute reports duplicate=true when another delivery of the same job
// already holds the lock. An error means the job's state could not be
// recorded and the message should be dead-lettered.
func (uc *ExecuteJobUsecase) Execute(ctx context.Context, job *domain.Job) (duplicate bool, err error) {
	log := uc.logger.With(zap.String("job_id", job.JobID.String()))

	acquired, err := uc.idempotent.AcquireLock(ctx, job.JobID)
	if err != nil {
		log.Error("Idempotency lock failed", zap.Error(err))
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		log.Info("Skipping duplicate delivery")
		return true, nil
	}

	if err := uc.repo.UpdateStatus(ctx, job.JobID, startStatus(job.Language)); err != nil {
		log.Error("Failed to mark job started", zap.Error(err))
		return false, fmt.Errorf("update status: %w", err)
	}

	result := uc.executor.Execute(ctx, job.ExecutionRequest())

	if err := uc.repo.SetResult(ctx, job.JobID, result); err != nil {
		log.Error("Failed to store result", zap.Error(err), zap.String("status", string(result.Status)))
		return false, fmt.Errorf("store result: %w", err)
	}

	// The key outlives the job with a TTL, so late redeliveries are still
	// recognized.
	if err := uc.idempotent.ReleaseLock(ctx, job.JobID); err != nil {
		log.Warn("Failed to release idempotency lock", zap.Error(err))
	}

	log.Info("Job executed",
		zap.String("status", string(result.Status)),
		zap.Int("exit_code", result.ExitCode),
		zap.Float64("execution_time", result.ExecutionTimeSeconds),
		zap.Int("memory_used_kb", result.MemoryUsedKB),
	)
	return false, nil
}

// startStatus is the status a job shows while the engine works on it.
func startStatus(lang domain.Language) domain.ExecutionStatus {
	if lang == domain.LangCpp {
		return domain.StatusCompiling
	}
	return domain.StatusRunning
}
