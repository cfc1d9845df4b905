package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

// GetJobUsecase reads jobs for polling clients and the websocket stream.
type GetJobUsecase struct {
	repo   repository.JobRepository
	cache  repository.JobCache
	logger *zap.Logger
}

// NewGetJobUsecase wires the usecase. cache may be nil.
func NewGetJobUsecase(repo repository.JobRepository, cache repository.JobCache, logger *zap.Logger) *GetJobUsecase {
	return &GetJobUsecase{repo: repo, cache: cache, logger: logger}
}

// Execute returns the job with id. Only terminal jobs go through the cache;
// a cache failure degrades to a database read.
func (uc *GetJobUsecase) Execute(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if job := uc.cached(ctx, id); job != nil {
		return job, nil
	}

	job, err := uc.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		return nil, domain.ErrJobNotFound
	case err != nil:
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	if uc.cache != nil && job.Status.IsTerminal() {
		if err := uc.cache.Set(ctx, job); err != nil {
			uc.logger.Warn("Job cache write failed", zap.String("job_id", id.String()), zap.Error(err))
		}
	}
	return job, nil
}

func (uc *GetJobUsecase) cached(ctx context.Context, id uuid.UUID) *domain.Job {
	if uc.cache == nil {
		return nil
	}
	job, err := uc.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			uc.logger.Warn("Job cache read failed", zap.String("job_id", id.String()), zap.Error(err))
		}
		return nil
	}
	return job
}
