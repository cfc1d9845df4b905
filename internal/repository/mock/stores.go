package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

// ---- IdempotencyStore mock ----

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore is a test double for repository.IdempotencyStore.
type IdempotencyStore struct {
	mu sync.Mutex

	AcquireLockFn func(ctx context.Context, jobID uuid.UUID) (bool, error)
	ReleaseLockFn func(ctx context.Context, jobID uuid.UUID) error

	AcquireCalls []uuid.UUID
	ReleaseCalls []uuid.UUID
}

func (m *IdempotencyStore) AcquireLock(ctx context.Context, jobID uuid.UUID) (bool, error) {
	m.mu.Lock()
	m.AcquireCalls = append(m.AcquireCalls, jobID)
	m.mu.Unlock()
	if m.AcquireLockFn != nil {
		return m.AcquireLockFn(ctx, jobID)
	}
	return true, nil // default: lock acquired
}

func (m *IdempotencyStore) ReleaseLock(ctx context.Context, jobID uuid.UUID) error {
	m.mu.Lock()
	m.ReleaseCalls = append(m.ReleaseCalls, jobID)
	m.mu.Unlock()
	if m.ReleaseLockFn != nil {
		return m.ReleaseLockFn(ctx, jobID)
	}
	return nil
}

// ---- JobCache mock ----

var _ repository.JobCache = (*JobCache)(nil)

// JobCache is an in-memory repository.JobCache that, like the real one, only
// keeps terminal jobs.
type JobCache struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]domain.Job

	GetFn  func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	SetFn  func(ctx context.Context, job *domain.Job) error
	PingFn func(ctx context.Context) error

	SetCalls []uuid.UUID
}

func (m *JobCache) Get(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &job, nil
}

func (m *JobCache) Set(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	m.SetCalls = append(m.SetCalls, job.JobID)
	m.mu.Unlock()
	if m.SetFn != nil {
		return m.SetFn(ctx, job)
	}
	if !job.Status.IsTerminal() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jobs == nil {
		m.jobs = make(map[uuid.UUID]domain.Job)
	}
	m.jobs[job.JobID] = *job
	return nil
}

func (m *JobCache) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// ---- Executor mock ----

var _ repository.Executor = (*Executor)(nil)

// Executor is a test double for repository.Executor.
type Executor struct {
	mu sync.Mutex

	ExecuteFn func(ctx context.Context, req *domain.ExecutionRequest) *domain.ExecutionResult

	ExecuteCalls []*domain.ExecutionRequest
}

func (m *Executor) Execute(ctx context.Context, req *domain.ExecutionRequest) *domain.ExecutionResult {
	m.mu.Lock()
	m.ExecuteCalls = append(m.ExecuteCalls, req)
	m.mu.Unlock()
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, req)
	}
	return &domain.ExecutionResult{
		Success:              true,
		Output:               "Hello, World!\n",
		ExecutionTimeSeconds: 0.042,
		Status:               domain.StatusSuccess,
	}
}

// Calls returns the recorded requests.
func (m *Executor) Calls() []*domain.ExecutionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ExecutionRequest(nil), m.ExecuteCalls...)
}
