package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/architeacher/svc-stream-bridge/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	poisoned int
}

func (m *countingMetrics) RecordFetch(_ context.Context, _ string, _ int, _ time.Duration) {}
func (m *countingMetrics) RecordSettlement(_ context.Context, _ string, _, _ int)          {}
func (m *countingMetrics) Shutdown(_ context.Context) error                                { return nil }

func (m *countingMetrics) RecordPoisonMessage(_ context.Context) {
	m.poisoned++
}

func TestInstrumentedCodec_CountsUndecodableMessages(t *testing.T) {
	t.Parallel()

	metrics := &countingMetrics{}
	codec := NewInstrumentedCodec(NewJSONCodec(), metrics)

	_, err := codec.Decode([]byte("garbage"), 1)
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.poisoned)
}

func TestInstrumentedCodec_PassesThroughCleanTraffic(t *testing.T) {
	t.Parallel()

	metrics := &countingMetrics{}
	codec := NewInstrumentedCodec(NewJSONCodec(), metrics)

	body, err := codec.Encode("1", []stream.Event{{Stream: "orders-17", Payload: []byte("p")}})
	require.NoError(t, err)

	events, err := codec.Decode(body, 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stream.SequenceToken(5), events[0].Token)
	assert.Zero(t, metrics.poisoned)
}
