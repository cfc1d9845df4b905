package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = "python"

// ExecuteCodeUsecase runs a snippet synchronously for the editor.
type ExecuteCodeUsecase struct {
	executor repository.Executor
	logger   *zap.Logger
}

// NewExecuteCodeUsecase creates a new ExecuteCodeUsecase.
func NewExecuteCodeUsecase(exec repository.Executor, logger *zap.Logger) *ExecuteCodeUsecase {
	return &ExecuteCodeUsecase{
		executor: exec,
		logger:   logger,
	}
}

// Execute runs req and returns its result. Failures of the snippet, the
// toolchain or the host are all reported inside the result.
func (uc *ExecuteCodeUsecase) Execute(ctx context.Context, req *domain.ExecutionRequest) *domain.ExecutionResult {
	r := *req
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}

	result := uc.executor.Execute(ctx, &r)

	uc.logger.Info("Code executed",
		zap.String("language", r.Language),
		zap.String("status", string(result.Status)),
		zap.Int("return_code", result.ExitCode),
		zap.Float64("execution_time", result.ExecutionTimeSeconds),
	)
	return result
}
