package stream

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// The interfaces below carve the amqp091-go channel surface into the slices
// each component actually uses, mainly to be able to generate mocks for the
// AMQP behavior.

// confirmation is the pending broker acknowledgment of one publishing.
// Satisfied by *amqp.DeferredConfirmation.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// publishChannel is the producer-side channel surface: publish one message
// and obtain its deferred confirmation.
type publishChannel interface {
	publishWithConfirm(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
}

// pollChannel is the consumer-side channel surface: basic.get polls plus tag
// settlement. *amqp.Channel satisfies it directly.
type pollChannel interface {
	Get(queue string, autoAck bool) (amqp.Delivery, bool, error)
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple bool, requeue bool) error
}

// declareChannel is the surface connection hooks use to re-declare resources
// on a fresh channel. *amqp.Channel satisfies it directly.
type declareChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// amqpPublishChannel adapts *amqp.Channel to publishChannel.
type amqpPublishChannel struct {
	ch *amqp.Channel
}

func (a amqpPublishChannel) publishWithConfirm(
	ctx context.Context, exchange, key string, msg amqp.Publishing,
) (confirmation, error) {
	confirm, err := a.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}

	return confirm, nil
}
