package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

var _ repository.JobCache = (*redisJobCache)(nil)

const (
	jobKeyPrefix = "pairexec:job:"

	// DefaultJobCacheTTL is how long a finished job stays cached.
	DefaultJobCacheTTL = time.Hour
)

type redisJobCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewRedisJobCache creates a cache for terminal jobs. A non-positive ttl uses
// DefaultJobCacheTTL.
func NewRedisJobCache(client goredis.UniversalClient, ttl time.Duration) repository.JobCache {
	if ttl <= 0 {
		ttl = DefaultJobCacheTTL
	}
	return &redisJobCache{client: client, ttl: ttl}
}

// cachedJob carries the fields the public JSON of a job omits.
type cachedJob struct {
	domain.Job
	MemoryUsedKB int `json:"memory_used_kb,omitempty"`
}

func (c *redisJobCache) Get(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	data, err := c.client.Get(ctx, jobKeyPrefix+id.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get job: %w", err)
	}

	var cj cachedJob
	if err := json.Unmarshal(data, &cj); err != nil {
		return nil, fmt.Errorf("redis: decode job: %w", err)
	}
	if cj.Result != nil {
		cj.Result.MemoryUsedKB = cj.MemoryUsedKB
	}
	return &cj.Job, nil
}

// Set stores job only when it has reached a terminal status.
func (c *redisJobCache) Set(ctx context.Context, job *domain.Job) error {
	if !job.Status.IsTerminal() {
		return nil
	}

	cj := cachedJob{Job: *job}
	if job.Result != nil {
		cj.MemoryUsedKB = job.Result.MemoryUsedKB
	}
	data, err := json.Marshal(cj)
	if err != nil {
		return fmt.Errorf("redis: encode job: %w", err)
	}
	if err := c.client.Set(ctx, jobKeyPrefix+job.JobID.String(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set job: %w", err)
	}
	return nil
}

func (c *redisJobCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
