package adapters

import (
	"context"

	"github.com/architeacher/svc-stream-bridge/internal/infrastructure"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
)

// RelayHandler is the default event handler. It logs each event and reports
// it as delivered, which settles the backing message with the broker.
type RelayHandler struct {
	partition string
	logger    infrastructure.Logger
}

func NewRelayHandler(partition string, logger infrastructure.Logger) *RelayHandler {
	return &RelayHandler{
		partition: partition,
		logger:    logger,
	}
}

func (h *RelayHandler) Handle(_ context.Context, events []stream.Event) []stream.Result {
	results := make([]stream.Result, 0, len(events))

	for _, ev := range events {
		h.logger.Debug().
			Str("partition", h.partition).
			Str("stream", ev.Stream).
			Int64("token", int64(ev.Token)).
			Int("payload_bytes", len(ev.Payload)).
			Msg("event relayed")

		results = append(results, stream.Delivered(ev))
	}

	return results
}
