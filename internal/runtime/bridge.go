package runtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/architeacher/svc-stream-bridge/internal/adapters"
	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/architeacher/svc-stream-bridge/internal/infrastructure"
	"github.com/architeacher/svc-stream-bridge/internal/ports"
	"github.com/architeacher/svc-stream-bridge/internal/shared/backoff"
	"github.com/architeacher/svc-stream-bridge/pkg/stream"
)

// partitionWorker drives one partition's receiver. Each worker owns its
// receiver exclusively, so fetch and finalize calls never overlap.
type partitionWorker struct {
	partition string
	receiver  *stream.Receiver
	handler   ports.EventHandler
	strategy  backoff.Strategy
	cfg       config.BridgeConfig
	logger    infrastructure.Logger
	metrics   infrastructure.Metrics
}

func (w *partitionWorker) run(ctx context.Context) {
	if err := w.initialize(ctx); err != nil {
		w.logger.Error().Err(err).Str("partition", w.partition).
			Msg("failed to initialize partition receiver, giving up")

		return
	}

	w.logger.Info().Str("partition", w.partition).Msg("partition worker started")

	idle := 0
	for ctx.Err() == nil {
		started := time.Now()
		batch := w.receiver.FetchBatch(ctx, w.cfg.BatchSize, w.cfg.FetchBudget)
		w.metrics.RecordFetch(ctx, w.partition, len(batch), time.Since(started))

		if len(batch) == 0 {
			idle++
			if !w.sleep(ctx, w.strategy.Backoff(idle)) {
				break
			}

			continue
		}

		idle = 0

		results := w.handler.Handle(ctx, batch)

		acked, nacked := 0, 0
		for _, res := range results {
			if res.Err == nil {
				acked++
			} else {
				nacked++
			}
		}

		w.receiver.Finalize(results)
		w.metrics.RecordSettlement(ctx, w.partition, acked, nacked)
	}

	w.receiver.Shutdown(context.Background())
	w.logger.Info().Str("partition", w.partition).Msg("partition worker stopped")
}

// initialize retries the first queue declaration, since the broker may still
// be coming up when the service starts.
func (w *partitionWorker) initialize(ctx context.Context) error {
	deadline := time.Now().Add(w.cfg.InitTimeout)

	var err error
	for attempt := 0; time.Now().Before(deadline); attempt++ {
		if err = w.receiver.Initialize(ctx); err == nil {
			return nil
		}

		w.logger.Error().Err(err).Str("partition", w.partition).
			Msg("failed to initialize partition receiver, retrying")

		if !w.sleep(ctx, w.strategy.Backoff(attempt)) {
			return ctx.Err()
		}
	}

	return err
}

func (w *partitionWorker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type BridgeCtx struct {
	deps    *Dependencies
	workers []*partitionWorker

	shutdownChannel chan os.Signal
	ctx             context.Context
	cancelFunc      context.CancelFunc
	wg              sync.WaitGroup
}

func NewBridge() *BridgeCtx {
	return &BridgeCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}
}

func (c *BridgeCtx) Run() {
	c.build()
	c.start()
	c.wait()
	c.shutdown()
}

func (c *BridgeCtx) build() {
	c.ctx, c.cancelFunc = context.WithCancel(context.Background())

	deps, err := initializeDependencies(c.ctx)
	if err != nil {
		panic(fmt.Errorf("failed to initialize dependencies: %w", err))
	}
	c.deps = deps

	strategy := backoff.NewExponentialStrategy(deps.cfg.Backoff)

	for _, partition := range deps.Mapper.Partitions() {
		c.workers = append(c.workers, &partitionWorker{
			partition: partition,
			receiver:  deps.Adapter.CreateReceiver(partition),
			handler:   adapters.NewRelayHandler(partition, deps.logger),
			strategy:  strategy,
			cfg:       deps.cfg.Bridge,
			logger:    deps.logger,
			metrics:   deps.Infra.Metrics,
		})
	}
}

func (c *BridgeCtx) start() {
	c.deps.logger.Info().
		Int("partitions", len(c.workers)).
		Str("exchange", c.deps.cfg.Queue.ExchangeName).
		Msg("starting stream bridge service")

	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.ctx)
	go func() {
		for err := range reloadErrors {
			if err != nil {
				c.deps.logger.Error().Err(err).Msg("config reload failed")

				continue
			}

			c.deps.logger.Info().Msg("config reloaded")
		}
	}()

	for _, worker := range c.workers {
		c.wg.Add(1)

		go func(w *partitionWorker) {
			defer c.wg.Done()
			w.run(c.ctx)
		}(worker)
	}
}

func (c *BridgeCtx) wait() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
	<-c.shutdownChannel
}

func (c *BridgeCtx) shutdown() {
	c.deps.logger.Info().Msg("received shutdown signal")
	defer c.cleanup()

	c.cancelFunc()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(c.deps.cfg.Bridge.ShutdownTimeout):
		c.deps.logger.Error().Msg("partition workers did not stop in time")
	}

	c.deps.logger.Info().Msg("stream bridge service stopped")
}

func (c *BridgeCtx) cleanup() {
	c.deps.logger.Info().Msg("cleaning up resources...")

	c.deps.Adapter.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.cfg.Bridge.ShutdownTimeout)
	defer cancel()

	if err := c.deps.Infra.Metrics.Shutdown(shutdownCtx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to shutdown metrics provider")
	}

	c.deps.logger.Info().Msg("cleanup completed")
}
