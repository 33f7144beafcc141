package stream

import (
	"context"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Producer publishes messages with durability and delivery-confirmation
// semantics over a channel owned by its calling context.
//
// Exactly one Producer/ConnectionManager pair may serve one execution
// context; the channel beneath it must never see concurrent calls.
type Producer struct {
	conn           *ConnectionManager
	logger         Logger
	confirmTimeout time.Duration
}

// NewProducer creates a producer on top of the given connection manager and
// registers the hook that puts every new channel into confirm mode.
func NewProducer(conn *ConnectionManager, opts ...producerOption) *Producer {
	options := defaultProducerOptions()
	for _, opt := range opts {
		opt(&options)
	}

	conn.OnChannel(func(ch *amqp.Channel) error {
		return ch.Confirm(false)
	})

	return &Producer{
		conn:           conn,
		logger:         options.logger,
		confirmTimeout: options.confirmTimeout,
	}
}

// Send publishes one message with persistent delivery mode and a fresh
// message identifier, then blocks until the broker confirms persistence,
// bounded by the confirm timeout. Any publish failure, broker refusal or
// confirmation timeout is surfaced as a *TransportError; it must be treated
// as a failed send.
func (p *Producer) Send(ctx context.Context, exchange, routingKey string, payload []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return &TransportError{Op: "publish", Err: err}
	}

	return p.sendOn(ctx, amqpPublishChannel{ch: ch}, exchange, routingKey, payload)
}

func (p *Producer) sendOn(ctx context.Context, ch publishChannel, exchange, routingKey string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	confirm, err := ch.publishWithConfirm(ctx, exchange, routingKey, amqp.Publishing{
		ContentType:  "application/octet-stream",
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return &TransportError{Op: "publish", Err: err}
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return &TransportError{Op: "confirm", Err: err}
	}

	if !acked {
		return &TransportError{Op: "confirm", Err: ErrNotConfirmed}
	}

	p.logger.Debug().Str("exchange", exchange).Str("routing_key", routingKey).Msg("publishing confirmed")

	return nil
}

// Dispose releases the producer's connection and channel.
func (p *Producer) Dispose() {
	p.conn.Dispose()
}
