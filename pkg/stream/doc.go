// Package stream adapts an ordered, partitioned event-stream abstraction to
// RabbitMQ's at-least-once delivery model.
//
// # Overview
//
// RabbitMQ acknowledges work per physical message and per channel, while a
// stream processor reports outcomes per logical event, later and possibly
// partially. This package reconciles the two: a Receiver decodes each
// physical message into one or more logical events, tracks them as pending
// deliveries, and translates the caller's per-event delivery reports back
// into channel-scoped ack/nack calls without ever splitting a physical
// message's fate.
//
// # Channel ownership
//
// An AMQP channel must never be touched by two goroutines at once; doing so
// corrupts the wire protocol. The package therefore never shares a channel
// behind a lock. Every ConnectionManager, and the connection and channel it
// owns, belongs to exactly one execution context: each Receiver carries its
// own private manager, and the Adapter hands out producers through a
// checkout pool so a producer's channel has at most one user at any moment.
//
// # Components
//
//   - ConnectionManager: lazy dial and single channel, recreated on access
//     when found closed, with a hook invoked once per new channel.
//   - Producer: persistent publishing with publisher confirms, bounded by a
//     confirm timeout.
//   - Consumer: non-blocking single-message polls from one partition queue,
//     plus tag settlement scoped to a channel.
//   - Receiver: batch fetching, sequence-token assignment and delivery-group
//     reconciliation.
//   - Adapter: the facade binding producers, receivers, a partition mapper
//     and a codec together.
//
// # Basic usage
//
//	cfg := stream.Config{Scheme: "amqp", Host: "localhost", Port: 5672, Vhost: "/"}
//	adapter := stream.NewAdapter(cfg, mapper, codec)
//	defer adapter.Close()
//
//	recv := adapter.CreateReceiver("orders-3")
//	events := recv.FetchBatch(ctx, 128, 200*time.Millisecond)
//	results := process(events)
//	recv.Finalize(results)
//
// # Dependencies
//
// This package depends on the official RabbitMQ AMQP client library:
//   - github.com/rabbitmq/amqp091-go
package stream
