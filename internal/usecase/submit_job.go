package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/publisher"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

const maxSourceCodeSize = 1 << 20

// SubmitJobUsecase queues a snippet for the worker fleet.
type SubmitJobUsecase struct {
	repo      repository.JobRepository
	publisher publisher.Publisher
	logger    *zap.Logger
}

func NewSubmitJobUsecase(repo repository.JobRepository, pub publisher.Publisher, logger *zap.Logger) *SubmitJobUsecase {
	return &SubmitJobUsecase{repo: repo, publisher: pub, logger: logger}
}

// validateSubmission returns the canonical language of req.
func validateSubmission(req *domain.SubmitRequest) (domain.Language, error) {
	lang, ok := domain.ParseLanguage(req.Language)
	switch {
	case !ok:
		return "", domain.ErrInvalidLanguage
	case strings.TrimSpace(req.SourceCode) == "":
		return "", domain.ErrEmptySourceCode
	case len(req.SourceCode) > maxSourceCodeSize:
		return "", domain.ErrPayloadTooLarge
	}
	return lang, nil
}

// Execute stores the job as QUEUED and publishes it. A job that cannot be
// published is finished right away with an INTERNAL_ERROR result so pollers
// do not wait on it forever.
func (uc *SubmitJobUsecase) Execute(ctx context.Context, req *domain.SubmitRequest) (*domain.SubmitResponse, error) {
	lang, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}
	now := time.Now().UTC()
	job := &domain.Job{
		JobID:      id,
		Language:   lang,
		SourceCode: req.SourceCode,
		Stdin:      req.Stdin,
		Status:     domain.StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	log := uc.logger.With(zap.String("job_id", id.String()), zap.String("language", string(lang)))

	if err := uc.repo.Create(ctx, job); err != nil {
		log.Error("Failed to persist job", zap.Error(err))
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := uc.publisher.Publish(ctx, job); err != nil {
		log.Error("Failed to publish job", zap.Error(err))
		if err := uc.repo.SetResult(ctx, id, unqueuedResult()); err != nil {
			log.Warn("Failed to mark unpublished job", zap.Error(err))
		}
		return nil, domain.ErrPublishFailed
	}

	log.Info("Job queued", zap.Int("source_bytes", len(req.SourceCode)))
	return &domain.SubmitResponse{JobID: id, Status: string(domain.StatusQueued)}, nil
}

func unqueuedResult() *domain.ExecutionResult {
	return &domain.ExecutionResult{
		Error:    "Execution error: " + domain.ErrPublishFailed.Error(),
		ExitCode: -1,
		Status:   domain.StatusInternalError,
	}
}
