package ports

import (
	"context"

	"github.com/architeacher/svc-stream-bridge/pkg/stream"
)

// EventHandler consumes a fetched batch and reports a result per event.
// Events it stays silent about remain pending until a later report.
type EventHandler interface {
	Handle(ctx context.Context, events []stream.Event) []stream.Result
}
