package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher enqueues task messages. Used by the side that creates tasks; it
// lives here so the wire format and the queue topology have a single owner.
type Publisher struct {
	ch    *amqp.Channel
	queue string
}

// NewPublisher opens a channel on the connection and declares the queue.
func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declaring queue %q: %w", queue, err)
	}

	return &Publisher{ch: ch, queue: queue}, nil
}

// Publish enqueues one task message as persistent JSON.
func (p *Publisher) Publish(ctx context.Context, msg TaskMessage) error {
	body, err := EncodeTaskMessage(msg)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing to queue %q: %w", p.queue, err)
	}
	return nil
}

// Close releases the channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
