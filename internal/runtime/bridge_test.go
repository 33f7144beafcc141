package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/architeacher/svc-stream-bridge/internal/adapters"
	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/architeacher/svc-stream-bridge/internal/infrastructure"
	"github.com/architeacher/svc-stream-bridge/internal/shared/backoff"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settlement struct {
	tag      uint64
	multiple bool
}

type fakeSource struct {
	deliveries []amqp.Delivery
	channel    *amqp.Channel

	acks     []settlement
	nacks    []settlement
	disposed bool
}

func (s *fakeSource) Prepare() error {
	return nil
}

func (s *fakeSource) Receive() (amqp.Delivery, *amqp.Channel, bool) {
	if len(s.deliveries) == 0 {
		return amqp.Delivery{}, nil, false
	}

	msg := s.deliveries[0]
	s.deliveries = s.deliveries[1:]

	return msg, s.channel, true
}

func (s *fakeSource) Ack(_ *amqp.Channel, tag uint64, multiple bool) {
	s.acks = append(s.acks, settlement{tag: tag, multiple: multiple})
}

func (s *fakeSource) Nack(_ *amqp.Channel, tag uint64, multiple bool) {
	s.nacks = append(s.nacks, settlement{tag: tag, multiple: multiple})
}

func (s *fakeSource) Dispose() {
	s.disposed = true
}

// recordingHandler reports the scripted outcome per stream and cancels the
// hosting context once it has seen a batch, so the worker loop terminates.
type recordingHandler struct {
	cancel  context.CancelFunc
	failing map[string]error

	handled []stream.Event
}

func (h *recordingHandler) Handle(_ context.Context, events []stream.Event) []stream.Result {
	defer h.cancel()

	h.handled = append(h.handled, events...)

	results := make([]stream.Result, 0, len(events))
	for _, ev := range events {
		if err, ok := h.failing[ev.Stream]; ok {
			results = append(results, stream.Failed(ev, err))

			continue
		}

		results = append(results, stream.Delivered(ev))
	}

	return results
}

func testBridgeConfig() config.BridgeConfig {
	return config.BridgeConfig{
		Partitions:     1,
		BatchSize:      0,
		FetchBudget:    50 * time.Millisecond,
		ConfirmTimeout: time.Second,
		InitTimeout:    time.Second,
	}
}

func testWorker(t *testing.T, source *fakeSource, handler *recordingHandler) *partitionWorker {
	t.Helper()

	return &partitionWorker{
		partition: "0",
		receiver:  stream.NewReceiver(source, adapters.NewJSONCodec()),
		handler:   handler,
		strategy: backoff.NewExponentialStrategy(config.BackoffConfig{
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
			Multiplier: 2.0,
		}),
		cfg:     testBridgeConfig(),
		logger:  infrastructure.New(config.LoggingConfig{Level: "disabled"}),
		metrics: &infrastructure.NoOpMetrics{},
	}
}

func encodedDelivery(t *testing.T, tag uint64, streams ...string) amqp.Delivery {
	t.Helper()

	codec := adapters.NewJSONCodec()

	events := make([]stream.Event, 0, len(streams))
	for _, id := range streams {
		events = append(events, stream.Event{Stream: id, Payload: []byte("payload")})
	}

	body, err := codec.Encode("0", events)
	require.NoError(t, err)

	return amqp.Delivery{DeliveryTag: tag, Body: body}
}

func TestPartitionWorker_RelaysAndSettlesBatch(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		channel: new(amqp.Channel),
		deliveries: []amqp.Delivery{
			encodedDelivery(t, 1, "orders-17"),
			encodedDelivery(t, 2, "orders-17", "billing-3"),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	handler := &recordingHandler{cancel: cancel}

	worker := testWorker(t, source, handler)
	worker.run(ctx)

	require.Len(t, handler.handled, 3)
	assert.Equal(t, []settlement{{tag: 2, multiple: true}}, source.acks)
	assert.Empty(t, source.nacks)
	assert.True(t, source.disposed)
}

func TestPartitionWorker_FailedEventNacksItsGroup(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		channel: new(amqp.Channel),
		deliveries: []amqp.Delivery{
			encodedDelivery(t, 1, "orders-17"),
			encodedDelivery(t, 2, "billing-3"),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	handler := &recordingHandler{
		cancel:  cancel,
		failing: map[string]error{"billing-3": errors.New("downstream unavailable")},
	}

	worker := testWorker(t, source, handler)
	worker.run(ctx)

	assert.Equal(t, []settlement{{tag: 1, multiple: true}}, source.acks)
	assert.Equal(t, []settlement{{tag: 2, multiple: false}}, source.nacks)
}

func TestPartitionWorker_EmptySourceBacksOffUntilCancelled(t *testing.T) {
	t.Parallel()

	source := &fakeSource{channel: new(amqp.Channel)}

	ctx, cancel := context.WithCancel(context.Background())
	handler := &recordingHandler{cancel: cancel}

	worker := testWorker(t, source, handler)

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	worker.run(ctx)

	assert.Empty(t, handler.handled)
	assert.Empty(t, source.acks)
	assert.True(t, source.disposed)
}
