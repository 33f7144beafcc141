package stream

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer polls one message at a time from a named partition queue and
// settles delivery tags on the channel they were received on.
type Consumer struct {
	conn   *ConnectionManager
	queue  string
	logger Logger
}

// NewConsumer creates a consumer for the given partition queue and registers
// the hook that re-declares the queue on every new channel. Queue
// declarations are bound to the channel session, so the declaration has to
// be repeated after each reconnect.
func NewConsumer(conn *ConnectionManager, queueName string, opts ...consumerOption) *Consumer {
	options := &consumerOptions{
		logger: nopLogger{},
	}

	for _, opt := range opts {
		opt(options)
	}

	c := &Consumer{
		conn:   conn,
		queue:  queueName,
		logger: options.logger,
	}

	conn.OnChannel(func(ch *amqp.Channel) error {
		return c.declareOn(ch)
	})

	return c
}

func (c *Consumer) declareOn(ch declareChannel) error {
	// Durable, non-exclusive, non-auto-delete: the queue survives broker
	// restarts and disconnected consumers.
	_, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", c.queue, err)
	}

	return nil
}

// Prepare establishes the connection, the channel and the queue declaration
// eagerly instead of on the first poll.
func (c *Consumer) Prepare() error {
	_, err := c.conn.Channel()

	return err
}

// Receive polls a single message without transport-side auto-ack. It returns
// the delivery together with the channel it arrived on, which scopes any
// later settlement of its tag. An empty queue and a transport error are
// indistinguishable to the caller; both mean "nothing available" and the
// error case is logged.
func (c *Consumer) Receive() (amqp.Delivery, *amqp.Channel, bool) {
	ch, err := c.conn.Channel()
	if err != nil {
		c.logger.Error().Err(err).Str("queue", c.queue).Msg("failed to obtain channel")

		return amqp.Delivery{}, nil, false
	}

	msg, ok := c.receiveOn(ch)

	return msg, ch, ok
}

func (c *Consumer) receiveOn(ch pollChannel) (amqp.Delivery, bool) {
	msg, ok, err := ch.Get(c.queue, false)
	if err != nil {
		c.logger.Error().Err(err).Str("queue", c.queue).Msg("failed to poll queue")

		return amqp.Delivery{}, false
	}

	return msg, ok
}

// Ack settles one delivery tag on the given channel, or every outstanding
// tag up to and including it when multiple is set. A failed ack is logged
// and swallowed: the message was never settled, so at-least-once redelivery
// recovers it.
func (c *Consumer) Ack(ch *amqp.Channel, tag uint64, multiple bool) {
	c.ackOn(ch, tag, multiple)
}

func (c *Consumer) ackOn(ch pollChannel, tag uint64, multiple bool) {
	if err := ch.Ack(tag, multiple); err != nil {
		c.logger.Error().Err(err).Uint64("tag", tag).Str("queue", c.queue).Msg("failed to ack delivery")
	}
}

// Nack negatively settles one delivery tag on the given channel, requeueing
// the message. Failures are logged and swallowed for the same reason as Ack.
func (c *Consumer) Nack(ch *amqp.Channel, tag uint64, multiple bool) {
	c.nackOn(ch, tag, multiple)
}

func (c *Consumer) nackOn(ch pollChannel, tag uint64, multiple bool) {
	if err := ch.Nack(tag, multiple, true); err != nil {
		c.logger.Error().Err(err).Uint64("tag", tag).Str("queue", c.queue).Msg("failed to nack delivery")
	}
}

// Dispose releases the consumer's connection and channel.
func (c *Consumer) Dispose() {
	c.conn.Dispose()
}
