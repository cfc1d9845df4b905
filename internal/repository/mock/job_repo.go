package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/repository"
)

var _ repository.JobRepository = (*MockJobRepository)(nil)

// MockJobRepository keeps jobs in a map. Set a *Func hook to replace a
// method; UpdateStatus and SetResult calls are recorded either way.
type MockJobRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.Job

	CreateFunc       func(ctx context.Context, job *domain.Job) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus) error
	SetResultFunc    func(ctx context.Context, id uuid.UUID, result *domain.ExecutionResult) error
	PingFunc         func(ctx context.Context) error

	StatusUpdates []StatusUpdate
	Results       []ResultUpdate
}

type StatusUpdate struct {
	ID     uuid.UUID
	Status domain.ExecutionStatus
}

type ResultUpdate struct {
	ID     uuid.UUID
	Result *domain.ExecutionResult
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{jobs: make(map[uuid.UUID]*domain.Job)}
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.Job) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	stored := *job
	m.mu.Lock()
	m.jobs[job.JobID] = &stored
	m.mu.Unlock()
	return nil
}

// GetByID returns a copy, so callers cannot mutate stored state.
func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if job, ok := m.jobs[id]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, domain.ErrJobNotFound
}

func (m *MockJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExecutionStatus) error {
	m.mu.Lock()
	m.StatusUpdates = append(m.StatusUpdates, StatusUpdate{ID: id, Status: status})
	m.mu.Unlock()

	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return m.mutate(id, func(j *domain.Job) { j.Status = status })
}

func (m *MockJobRepository) SetResult(ctx context.Context, id uuid.UUID, result *domain.ExecutionResult) error {
	m.mu.Lock()
	m.Results = append(m.Results, ResultUpdate{ID: id, Result: result})
	m.mu.Unlock()

	if m.SetResultFunc != nil {
		return m.SetResultFunc(ctx, id, result)
	}
	return m.mutate(id, func(j *domain.Job) {
		j.Status = result.Status
		j.Result = result
	})
}

func (m *MockJobRepository) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}

func (m *MockJobRepository) mutate(id uuid.UUID, fn func(*domain.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	fn(job)
	return nil
}

// GetAll returns copies of the stored jobs, oldest first.
func (m *MockJobRepository) GetAll() []*domain.Job {
	m.mu.RLock()
	out := make([]*domain.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		cp := *j
		out = append(out, &cp)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out
}
