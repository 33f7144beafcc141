package adapters

import (
	"context"

	"github.com/architeacher/svc-stream-bridge/internal/infrastructure"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
)

// InstrumentedCodec wraps another codec and counts the messages it fails to
// decode. The receiver discards such messages, so the wrapper is the only
// place a poison message is still observable.
type InstrumentedCodec struct {
	inner   stream.Codec
	metrics infrastructure.Metrics
}

func NewInstrumentedCodec(inner stream.Codec, metrics infrastructure.Metrics) *InstrumentedCodec {
	return &InstrumentedCodec{
		inner:   inner,
		metrics: metrics,
	}
}

func (c *InstrumentedCodec) Encode(partition string, events []stream.Event) ([]byte, error) {
	return c.inner.Encode(partition, events)
}

func (c *InstrumentedCodec) Decode(body []byte, first stream.SequenceToken) ([]stream.Event, error) {
	events, err := c.inner.Decode(body, first)
	if err != nil {
		c.metrics.RecordPoisonMessage(context.Background())
	}

	return events, err
}
