package publisher

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	baseReconnectDelay = 1 * time.Second
	maxReconnectDelay  = 30 * time.Second
)

// Dial opens a connection and one channel, then runs setup on the channel.
// Nothing is left open when an error is returned.
func Dial(url string, setup func(ch *amqp.Channel) error) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel: %w", err)
	}

	if setup != nil {
		if err := setup(ch); err != nil {
			ch.Close()
			conn.Close()
			return nil, nil, err
		}
	}
	return conn, ch, nil
}

// Backoff is the delay before reconnect attempt n (0-based): one second,
// doubling up to thirty.
func Backoff(attempt int) time.Duration {
	delay := baseReconnectDelay
	for i := 0; i < attempt && delay < maxReconnectDelay; i++ {
		delay *= 2
	}
	return min(delay, maxReconnectDelay)
}
