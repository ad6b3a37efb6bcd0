package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/avetrov/babel-api/internal/platform/logger"
)

// Handler processes one decoded task message. The returned error is logged;
// it does not trigger a redelivery because business failures are recorded on
// the task itself.
type Handler func(ctx context.Context, msg TaskMessage) error

// Consumer reads task messages from a queue one at a time and hands them to
// a Handler. Every delivery is acknowledged exactly once, whatever the
// handler outcome, so a poison message can never wedge the queue.
type Consumer struct {
	conn    *amqp.Connection
	queue   string
	handler Handler
}

// NewConsumer creates a Consumer for the named queue.
func NewConsumer(conn *amqp.Connection, queue string, handler Handler) *Consumer {
	return &Consumer{
		conn:    conn,
		queue:   queue,
		handler: handler,
	}
}

// Run declares the queue and consumes it until ctx is cancelled or the
// delivery channel closes. Prefetch is one: a translation occupies the
// worker for a while and unacked messages must stay available to other
// workers.
func (c *Consumer) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("opening channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring queue %q: %w", c.queue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("setting prefetch: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consuming queue %q: %w", c.queue, err)
	}

	log.Info("consuming translation tasks", slog.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopping", slog.String("queue", c.queue))
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for queue %q closed", c.queue)
			}
			c.handleDelivery(ctx, delivery)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	log := logger.FromContext(ctx)

	// The ack is unconditional. Requeueing would loop the same failure
	// forever; failures are persisted on the task instead.
	defer func() {
		if err := delivery.Ack(false); err != nil {
			log.Error("failed to ack delivery", slog.String("error", err.Error()))
		}
	}()

	defer func() {
		if p := recover(); p != nil {
			log.Error("handler panicked", slog.Any("panic", p))
		}
	}()

	msg, err := DecodeTaskMessage(delivery.Body)
	if err != nil {
		log.Error("dropping malformed task message", slog.String("error", err.Error()))
		return
	}

	log.Debug("received task message",
		slog.String("task_id", msg.TaskID.String()),
		slog.Int("retry_count", msg.RetryCount),
		slog.Int("resend_count", msg.ResendCount))

	if err := c.handler(ctx, msg); err != nil {
		log.Error("task processing failed",
			slog.String("task_id", msg.TaskID.String()),
			slog.String("error", err.Error()))
	}
}
