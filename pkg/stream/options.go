package stream

import (
	"time"
)

const defaultConfirmTimeout = 10 * time.Second

type managerOptions struct {
	logger Logger
}

type managerOption func(options *managerOptions)

// WithLogger returns a managerOption which sets the logger used by a
// connection manager.
func WithLogger(l Logger) managerOption {
	return func(o *managerOptions) {
		o.logger = l
	}
}

type producerOptions struct {
	logger         Logger
	confirmTimeout time.Duration
}

type producerOption func(options *producerOptions)

// WithConfirmTimeout returns a producerOption which bounds the wait for a
// publisher confirmation.
func WithConfirmTimeout(d time.Duration) producerOption {
	return func(o *producerOptions) {
		o.confirmTimeout = d
	}
}

// WithProducerLogger returns a producerOption which sets the logger used on
// the send path.
func WithProducerLogger(l Logger) producerOption {
	return func(o *producerOptions) {
		o.logger = l
	}
}

func defaultProducerOptions() producerOptions {
	return producerOptions{
		logger:         nopLogger{},
		confirmTimeout: defaultConfirmTimeout,
	}
}

type consumerOptions struct {
	logger Logger
}

type consumerOption func(options *consumerOptions)

// WithConsumerLogger returns a consumerOption which sets the logger used
// when polling and settling deliveries.
func WithConsumerLogger(l Logger) consumerOption {
	return func(o *consumerOptions) {
		o.logger = l
	}
}

type receiverOptions struct {
	logger Logger
}

type receiverOption func(options *receiverOptions)

// WithReceiverLogger returns a receiverOption which sets the logger used by
// the reconciliation engine.
func WithReceiverLogger(l Logger) receiverOption {
	return func(o *receiverOptions) {
		o.logger = l
	}
}

type adapterOptions struct {
	logger         Logger
	confirmTimeout time.Duration
}

type adapterOption func(options *adapterOptions)

// WithAdapterLogger returns an adapterOption which sets the logger handed to
// every producer, consumer and receiver the adapter creates.
func WithAdapterLogger(l Logger) adapterOption {
	return func(o *adapterOptions) {
		o.logger = l
	}
}

// WithSendTimeout returns an adapterOption which bounds the publisher
// confirmation wait of the adapter's producers.
func WithSendTimeout(d time.Duration) adapterOption {
	return func(o *adapterOptions) {
		o.confirmTimeout = d
	}
}
