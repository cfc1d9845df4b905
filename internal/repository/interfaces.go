package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

// JobRepository defines the interface for job persistence operations.
// Implementations must be safe for concurrent use.
type JobRepository interface {
	// Create inserts a new job into the data store.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job by its UUID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// UpdateStatus atomically updates the status of a job.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus) error

	// SetResult stores the execution result and moves the job to its terminal status.
	SetResult(ctx context.Context, id uuid.UUID, result *domain.ExecutionResult) error

	// Ping checks connectivity to the data store.
	Ping(ctx context.Context) error
}

// IdempotencyStore defines the interface for distributed deduplication locks.
type IdempotencyStore interface {
	// AcquireLock attempts to acquire an exclusive processing lock for a job.
	// Returns true if the lock was acquired (first time), false if already locked (duplicate).
	AcquireLock(ctx context.Context, jobID uuid.UUID) (bool, error)

	// ReleaseLock releases the processing lock with a TTL for eventual cleanup.
	ReleaseLock(ctx context.Context, jobID uuid.UUID) error
}

// JobCache keeps finished jobs close to the API so polling clients do not hit
// the database.
type JobCache interface {
	// Get returns domain.ErrCacheMiss when the job is not cached.
	Get(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Set(ctx context.Context, job *domain.Job) error
	Ping(ctx context.Context) error
}

// Executor runs a single request to completion. It never fails: every error is
// reported inside the result.
type Executor interface {
	Execute(ctx context.Context, req *domain.ExecutionRequest) *domain.ExecutionResult
}
