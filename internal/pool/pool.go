package pool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/metrics"
)

// Processor runs one queued job. It reports whether the job was a duplicate
// delivery; an error means the message should be dead-lettered.
type Processor interface {
	Execute(ctx context.Context, job *domain.Job) (bool, error)
}

// WorkerPool manages a fixed-size pool of goroutines that process jobs.
type WorkerPool struct {
	size      int
	jobs      <-chan *domain.JobMessage
	processor Processor
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, jobs <-chan *domain.JobMessage, processor Processor, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:      size,
		jobs:      jobs,
		processor: processor,
		logger:    logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current jobs and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case msg, ok := <-p.jobs:
			if !ok {
				p.logger.Debug("Job channel closed", zap.Int("worker_id", id))
				return
			}
			p.handle(ctx, id, msg)
		}
	}
}

// handle processes one message and settles it. A panic in the processor
// dead-letters the message and leaves the worker running.
func (p *WorkerPool) handle(ctx context.Context, id int, msg *domain.JobMessage) {
	job := msg.Job

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.String("job_id", job.JobID.String()),
				zap.Any("panic", r),
			)
			p.nack(msg)
		}
	}()

	p.logger.Info("Worker processing job",
		zap.Int("worker_id", id),
		zap.String("job_id", job.JobID.String()),
		zap.String("language", string(job.Language)),
	)

	startTime := time.Now()
	isDuplicate, err := p.processor.Execute(ctx, job)

	switch {
	case err != nil:
		p.logger.Error("Job execution failed",
			zap.Int("worker_id", id),
			zap.String("job_id", job.JobID.String()),
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Error(err),
		)
		// Requeuing a deterministic failure would loop forever; go to the DLQ.
		p.nack(msg)

	case isDuplicate:
		p.logger.Debug("Duplicate job skipped",
			zap.Int("worker_id", id),
			zap.String("job_id", job.JobID.String()),
		)
		metrics.JobsTotal.WithLabelValues("duplicate").Inc()
		p.ack(msg)

	default:
		metrics.JobsTotal.WithLabelValues("processed").Inc()
		p.ack(msg)
	}
}

func (p *WorkerPool) ack(msg *domain.JobMessage) {
	if err := msg.Ack(); err != nil {
		p.logger.Error("Failed to ACK message",
			zap.String("job_id", msg.Job.JobID.String()),
			zap.Error(err),
		)
	}
}

func (p *WorkerPool) nack(msg *domain.JobMessage) {
	metrics.JobsTotal.WithLabelValues("dead_lettered").Inc()
	if err := msg.Nack(false); err != nil {
		p.logger.Error("Failed to NACK message",
			zap.String("job_id", msg.Job.JobID.String()),
			zap.Error(err),
		)
	}
}
