package mock

import (
	"context"
	"sync"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/publisher"
)

var _ publisher.Publisher = (*MockPublisher)(nil)

// MockPublisher runs jobs through the real wire encoding and records them
// instead of talking to a broker.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.Job
	Closed    bool

	PublishFn func(ctx context.Context, job *domain.Job) error
	PingFn    func(ctx context.Context) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, job *domain.Job) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, job)
	}
	if _, err := publisher.EncodeJob(job); err != nil {
		return err
	}
	m.mu.Lock()
	m.Published = append(m.Published, job)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) Ping(ctx context.Context) error {
	if m.PingFn == nil {
		return nil
	}
	return m.PingFn(ctx)
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}
