package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS execution_jobs (
		job_id          UUID PRIMARY KEY,
		language        TEXT NOT NULL,
		source_code     TEXT NOT NULL,
		stdin           TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		success         BOOLEAN,
		output          TEXT,
		error           TEXT,
		exit_code       INTEGER,
		execution_time  DOUBLE PRECISION,
		memory_used_kb  INTEGER,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_execution_jobs_status ON execution_jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_execution_jobs_created_at ON execution_jobs (created_at)`,
}

// Migrate creates the job table and its indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}
