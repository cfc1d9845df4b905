package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqplib "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	"github.com/Harsh-BH/pairexec/internal/publisher"
)

// Consumer listens to RabbitMQ and dispatches JobMessage (with ACK callbacks) to a channel.
type Consumer struct {
	url    string
	logger *zap.Logger
	jobs   chan<- *domain.JobMessage

	mu      sync.Mutex
	conn    *amqplib.Connection
	channel *amqplib.Channel
	closed  bool
	closeCh chan struct{}
}

// NewConsumer creates a new RabbitMQ consumer. Deliveries are not
// auto-acknowledged: each one is wrapped in a JobMessage whose Ack/Nack
// callbacks the worker pool calls once the job has run.
func NewConsumer(url string, jobs chan<- *domain.JobMessage, logger *zap.Logger) (*Consumer, error) {
	c := &Consumer{
		url:     url,
		logger:  logger,
		jobs:    jobs,
		closeCh: make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

// connect opens a channel with prefetch=1 and declares the shared topology,
// so either side may start first.
func (c *Consumer) connect() error {
	conn, ch, err := publisher.Dial(c.url, func(ch *amqplib.Channel) error {
		if err := ch.Qos(1, 0, false); err != nil {
			return fmt.Errorf("amqp qos: %w", err)
		}
		return publisher.DeclareTopology(ch)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		conn.Close()
		return errors.New("amqp consumer closed")
	}
	c.conn = conn
	c.channel = ch
	return nil
}

// Start consumes until ctx is cancelled or Close is called, reconnecting with
// backoff whenever the broker connection drops.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if err == nil || c.stopping(ctx) {
			return nil
		}

		c.logger.Warn("AMQP consumer lost connection, reconnecting...", zap.Error(err))

		for attempt := 0; ; attempt++ {
			delay := publisher.Backoff(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			case <-c.closeCh:
				return nil
			}

			if err := c.connect(); err != nil {
				c.logger.Error("Reconnect failed",
					zap.Int("attempt", attempt+1),
					zap.Duration("delay", delay),
					zap.Error(err),
				)
				continue
			}

			c.logger.Info("Reconnected to RabbitMQ")
			break
		}
	}
}

func (c *Consumer) stopping(ctx context.Context) bool {
	select {
	case <-c.closeCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// consume runs one consume session. It returns nil on shutdown and an error
// when the session ends because the channel went away.
func (c *Consumer) consume(ctx context.Context) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	if ch == nil {
		return errors.New("amqp channel is nil")
	}

	deliveries, err := ch.Consume(
		publisher.QueueName,
		"",    // auto-generated consumer tag
		false, // auto-ack disabled (manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	c.logger.Info("AMQP consumer started", zap.String("queue", publisher.QueueName))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("AMQP consumer stopping (context cancelled)")
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if stop := c.dispatch(ctx, delivery); stop {
				return nil
			}
		}
	}
}

// dispatch hands one delivery to the worker pool. Malformed messages are
// dead-lettered immediately. It reports true when ctx ended while waiting
// for a free worker; that delivery is requeued.
func (c *Consumer) dispatch(ctx context.Context, d amqplib.Delivery) bool {
	job, err := publisher.DecodeJob(d.Body)
	if err != nil {
		c.logger.Error("Rejecting malformed job message",
			zap.Error(err),
			zap.String("message_id", d.MessageId),
			zap.Int("body_size", len(d.Body)),
		)
		_ = d.Nack(false, false)
		return false
	}

	c.logger.Debug("Received job from queue",
		zap.String("job_id", job.JobID.String()),
		zap.String("language", string(job.Language)),
		zap.Bool("redelivered", d.Redelivered),
	)

	msg := &domain.JobMessage{
		Job:  job,
		Ack:  func() error { return d.Ack(false) },
		Nack: func(requeue bool) error { return d.Nack(false, requeue) },
	}

	// Blocks while every worker is busy; prefetch=1 keeps the broker from
	// pushing more in the meantime.
	select {
	case c.jobs <- msg:
		return false
	case <-ctx.Done():
		_ = d.Nack(false, true)
		return true
	}
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closeCh)

	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
