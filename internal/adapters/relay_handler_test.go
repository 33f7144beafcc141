package adapters

import (
	"context"
	"testing"

	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/architeacher/svc-stream-bridge/internal/infrastructure"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayHandler_ReportsEveryEventDelivered(t *testing.T) {
	t.Parallel()

	logger := infrastructure.New(config.LoggingConfig{Level: "disabled"})
	handler := NewRelayHandler("2", logger)

	events := []stream.Event{
		{Token: 11, Stream: "orders-17", Payload: []byte("a")},
		{Token: 12, Stream: "billing-3", Payload: []byte("b")},
	}

	results := handler.Handle(context.Background(), events)

	require.Len(t, results, 2)
	for i, res := range results {
		assert.Equal(t, events[i].Token, res.Token)
		assert.NoError(t, res.Err)
	}
}

func TestRelayHandler_EmptyBatch(t *testing.T) {
	t.Parallel()

	logger := infrastructure.New(config.LoggingConfig{Level: "disabled"})
	handler := NewRelayHandler("0", logger)

	assert.Empty(t, handler.Handle(context.Background(), nil))
}
