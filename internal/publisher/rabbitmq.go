package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
)

// publishTimeout bounds a publish together with its broker confirmation.
const publishTimeout = 5 * time.Second

var errChannelUnavailable = errors.New("rabbitmq: channel not available (reconnecting)")

// Publisher defines the interface for publishing jobs to the message broker.
type Publisher interface {
	Publish(ctx context.Context, job *domain.Job) error
	Ping(ctx context.Context) error
	Close() error
}

type rabbitPublisher struct {
	url    string
	logger *zap.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
	done    chan struct{}
}

// NewRabbitMQPublisher connects, declares the topology and enables publisher
// confirms. A lost connection is re-established in the background.
func NewRabbitMQPublisher(url string, logger *zap.Logger) (Publisher, error) {
	p := &rabbitPublisher{
		url:    url,
		logger: logger,
		done:   make(chan struct{}),
	}

	notify, err := p.connect()
	if err != nil {
		return nil, err
	}

	go p.watch(notify)

	return p, nil
}

// connect dials and swaps in the new channel. The returned channel reports
// when the connection goes away.
func (p *rabbitPublisher) connect() (<-chan *amqp.Error, error) {
	conn, ch, err := Dial(p.url, func(ch *amqp.Channel) error {
		if err := ch.Confirm(false); err != nil {
			return fmt.Errorf("rabbitmq: enable confirms: %w", err)
		}
		return DeclareTopology(ch)
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		conn.Close()
		return nil, errors.New("rabbitmq: publisher closed")
	}
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()

	p.logger.Info("RabbitMQ publisher ready",
		zap.String("exchange", ExchangeName),
		zap.String("queue", QueueName),
	)
	return conn.NotifyClose(make(chan *amqp.Error, 1)), nil
}

// watch blocks on the connection's close notification and reconnects with
// backoff until Close is called.
func (p *rabbitPublisher) watch(notify <-chan *amqp.Error) {
	for {
		reason, ok := <-notify
		if !ok || reason == nil {
			return // closed by us
		}

		p.logger.Warn("RabbitMQ connection lost, reconnecting...", zap.String("reason", reason.Error()))

		p.mu.Lock()
		p.channel = nil
		p.mu.Unlock()

		for attempt := 0; ; attempt++ {
			select {
			case <-p.done:
				return
			case <-time.After(Backoff(attempt)):
			}

			next, err := p.connect()
			if err != nil {
				p.logger.Warn("RabbitMQ reconnect failed", zap.Int("attempt", attempt+1), zap.Error(err))
				continue
			}
			notify = next
			p.logger.Info("RabbitMQ reconnected")
			break
		}
	}
}

// Publish sends job and waits for the broker to confirm it.
func (p *rabbitPublisher) Publish(ctx context.Context, job *domain.Job) error {
	msg, err := EncodeJob(job)
	if err != nil {
		return err
	}

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()

	if ch == nil {
		return errChannelUnavailable
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	confirm, err := ch.PublishWithDeferredConfirmWithContext(publishCtx, ExchangeName, RoutingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}

	acked, err := confirm.WaitContext(publishCtx)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish confirmation (job_id=%s): %w", job.JobID, err)
	}
	if !acked {
		return fmt.Errorf("rabbitmq: broker nacked message (job_id=%s)", job.JobID)
	}

	p.logger.Debug("Published job to RabbitMQ",
		zap.String("job_id", job.JobID.String()),
		zap.Int("body_size", len(msg.Body)),
	)
	return nil
}

// Ping reports whether the publisher currently holds an open channel.
func (p *rabbitPublisher) Ping(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.channel == nil || p.channel.IsClosed() {
		return errChannelUnavailable
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
