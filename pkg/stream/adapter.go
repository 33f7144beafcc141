package stream

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// sender is the producer surface the adapter publishes through.
type sender interface {
	Send(ctx context.Context, exchange, routingKey string, payload []byte) error
	Dispose()
}

// Adapter is the top-level facade. It binds producers to calling contexts
// through a checkout pool, constructs one independent receiver per partition
// and delegates partition assignment and payload encoding to external
// collaborators.
type Adapter struct {
	cfg    Config
	mapper PartitionMapper
	codec  Codec
	logger Logger

	confirmTimeout time.Duration

	// The pool is the only synchronization on the send path: a checked-out
	// producer, and the connection and channel it owns, has exactly one user
	// until it is returned. Producers are created lazily and never shared
	// concurrently.
	mu      sync.Mutex
	idle    []sender
	senders []sender

	newSender func() sender
}

// NewAdapter creates an adapter for the given broker, partition mapper and
// codec.
func NewAdapter(cfg Config, mapper PartitionMapper, codec Codec, opts ...adapterOption) *Adapter {
	options := &adapterOptions{
		logger:         nopLogger{},
		confirmTimeout: defaultConfirmTimeout,
	}

	for _, opt := range opts {
		opt(options)
	}

	a := &Adapter{
		cfg:            cfg,
		mapper:         mapper,
		codec:          codec,
		logger:         options.logger,
		confirmTimeout: options.confirmTimeout,
	}

	a.newSender = func() sender {
		conn := NewConnectionManager(a.cfg, WithLogger(a.logger))

		return NewProducer(conn,
			WithProducerLogger(a.logger),
			WithConfirmTimeout(a.confirmTimeout),
		)
	}

	return a
}

// Send encodes the given events and publishes them to the partition the
// mapper assigns to the stream, waiting for the broker's confirmation.
func (a *Adapter) Send(ctx context.Context, streamID string, events []Event) error {
	partition := a.mapper.Partition(streamID)
	exchange, routingKey := a.mapper.Route(partition)

	payload, err := a.codec.Encode(partition, events)
	if err != nil {
		return fmt.Errorf("failed to encode events for stream %q: %w", streamID, err)
	}

	producer := a.acquire()
	defer a.release(producer)

	return producer.Send(ctx, exchange, routingKey, payload)
}

func (a *Adapter) acquire() sender {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.idle); n > 0 {
		s := a.idle[n-1]
		a.idle = a.idle[:n-1]

		return s
	}

	s := a.newSender()
	a.senders = append(a.senders, s)

	return s
}

func (a *Adapter) release(s sender) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.idle = append(a.idle, s)
}

// CreateReceiver constructs an independent receiver for the given partition,
// with its own private connection, channel and consumer.
func (a *Adapter) CreateReceiver(partition string) *Receiver {
	conn := NewConnectionManager(a.cfg, WithLogger(a.logger))
	consumer := NewConsumer(conn, a.mapper.QueueName(partition), WithConsumerLogger(a.logger))

	return NewReceiver(consumer, a.codec, WithReceiverLogger(a.logger))
}

// Close disposes every producer the adapter ever created. Receivers are shut
// down by their own hosting loops.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range a.senders {
		s.Dispose()
	}

	a.senders = nil
	a.idle = nil
}
