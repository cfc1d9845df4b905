package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

// Ensure pgJobRepo implements repository.JobRepository.
var _ repository.JobRepository = (*pgJobRepo)(nil)

type pgJobRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgreSQL-backed job repository.
func NewPostgresJobRepository(pool *pgxpool.Pool) repository.JobRepository {
	return &pgJobRepo{pool: pool}
}

func (r *pgJobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO execution_jobs (job_id, language, source_code, stdin, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, query,
		job.JobID, job.Language, job.SourceCode, job.Stdin, job.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("postgres: create job: %w", err)
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

func (r *pgJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT job_id, language, source_code, stdin, status,
		       success, output, error, exit_code, execution_time, memory_used_kb,
		       created_at, updated_at
		FROM execution_jobs
		WHERE job_id = $1`

	var (
		job     domain.Job
		success *bool
		output  *string
		errText *string
		code    *int
		elapsed *float64
		memory  *int
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.JobID, &job.Language, &job.SourceCode, &job.Stdin, &job.Status,
		&success, &output, &errText, &code, &elapsed, &memory,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get job by id: %w", err)
	}

	// Result columns stay NULL until the worker stores a result.
	if success != nil {
		job.Result = &domain.ExecutionResult{
			Success:              *success,
			Output:               deref(output),
			Error:                deref(errText),
			ExecutionTimeSeconds: deref(elapsed),
			ExitCode:             deref(code),
			Status:               job.Status,
			MemoryUsedKB:         deref(memory),
		}
	}
	return &job, nil
}

func (r *pgJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus) error {
	query := `UPDATE execution_jobs SET status = $1, updated_at = $2 WHERE job_id = $3`
	tag, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgJobRepo) SetResult(ctx context.Context, id uuid.UUID, result *domain.ExecutionResult) error {
	query := `
		UPDATE execution_jobs
		SET status = $1, success = $2, output = $3, error = $4, exit_code = $5,
		    execution_time = $6, memory_used_kb = $7, updated_at = $8
		WHERE job_id = $9`

	tag, err := r.pool.Exec(ctx, query,
		result.Status, result.Success, result.Output, result.Error, result.ExitCode,
		result.ExecutionTimeSeconds, result.MemoryUsedKB, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("postgres: set result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgJobRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
