package infrastructure

import (
	"context"
	"time"
)

type NoOpMetrics struct{}

func (n *NoOpMetrics) RecordFetch(_ context.Context, _ string, _ int, _ time.Duration) {
}

func (n *NoOpMetrics) RecordSettlement(_ context.Context, _ string, _, _ int) {
}

func (n *NoOpMetrics) RecordPoisonMessage(_ context.Context) {
}

func (n *NoOpMetrics) Shutdown(_ context.Context) error {
	return nil
}
