package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/pairexec/internal/repository"
)

var _ repository.IdempotencyStore = (*redisIdempotency)(nil)

const (
	lockKeyPrefix = "pairexec:lock:"

	// A worker that dies mid-job holds the key for at most processingTTL, after
	// which a redelivery may run the job again.
	processingTTL = 10 * time.Minute
	doneTTL       = 24 * time.Hour

	lockProcessing = "processing"
	lockDone       = "done"
)

type redisIdempotency struct {
	client goredis.UniversalClient
}

// NewRedisIdempotencyStore returns a store that marks each job id in Redis:
// "processing" while a worker runs it and "done" once its result is stored.
func NewRedisIdempotencyStore(client goredis.UniversalClient) repository.IdempotencyStore {
	return &redisIdempotency{client: client}
}

// AcquireLock reports false when the job is already running or finished.
func (r *redisIdempotency) AcquireLock(ctx context.Context, jobID uuid.UUID) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(jobID), lockProcessing, processingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire lock %s: %w", jobID, err)
	}
	return ok, nil
}

// ReleaseLock turns the key into a long-lived "done" marker, so redeliveries
// of a finished job are still skipped.
func (r *redisIdempotency) ReleaseLock(ctx context.Context, jobID uuid.UUID) error {
	err := r.client.SetXX(ctx, lockKey(jobID), lockDone, doneTTL).Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis: mark job %s done: %w", jobID, err)
	}
	return nil
}

func lockKey(id uuid.UUID) string {
	return lockKeyPrefix + id.String()
}
