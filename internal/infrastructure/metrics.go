package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/svc-stream-bridge/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	metricsNamespace = "stream_bridge"
)

type (
	Metrics interface {
		RecordFetch(ctx context.Context, partition string, count int, duration time.Duration)
		RecordSettlement(ctx context.Context, partition string, acked, nacked int)
		RecordPoisonMessage(ctx context.Context)
		Shutdown(ctx context.Context) error
	}

	OTELMetrics struct {
		meterProvider *sdkmetric.MeterProvider
		meter         metric.Meter
		logger        Logger

		fetchedTotal  metric.Int64Counter
		fetchDuration metric.Float64Histogram
		ackedTotal    metric.Int64Counter
		nackedTotal   metric.Int64Counter
		poisonTotal   metric.Int64Counter
	}
)

func NewMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (Metrics, error) {
	if !cfg.Telemetry.Metrics.Enabled {
		logger.Info().Msg("metrics disabled, using NoOp implementation")

		return &NoOpMetrics{}, nil
	}

	return NewOTELMetrics(ctx, cfg, logger)
}

func NewOTELMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (*OTELMetrics, error) {
	endpoint := fmt.Sprintf("%s:%s", cfg.Telemetry.OtelGRPCHost, cfg.Telemetry.OtelGRPCPort)

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTEL collector: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppConfig.ServiceName),
			semconv.ServiceVersionKey.String(cfg.AppConfig.ServiceVersion),
			semconv.ServiceInstanceIDKey.String(cfg.AppConfig.CommitSHA),
			semconv.DeploymentEnvironmentKey.String(cfg.AppConfig.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		metricsNamespace,
		metric.WithInstrumentationVersion(cfg.AppConfig.ServiceVersion),
	)

	provider := &OTELMetrics{
		meterProvider: meterProvider,
		meter:         meter,
		logger:        logger,
	}

	if err := provider.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info().
		Str("otel_endpoint", endpoint).
		Msg("OTEL metrics provider initialized successfully")

	return provider, nil
}

func (om *OTELMetrics) initializeMetrics() error {
	var err error

	om.fetchedTotal, err = om.meter.Int64Counter(
		"events_fetched_total",
		metric.WithDescription("Total number of events fetched from partition queues"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events_fetched_total counter: %w", err)
	}

	om.fetchDuration, err = om.meter.Float64Histogram(
		"fetch_duration_seconds",
		metric.WithDescription("Duration of a single fetch pass in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch_duration_seconds histogram: %w", err)
	}

	om.ackedTotal, err = om.meter.Int64Counter(
		"deliveries_acked_total",
		metric.WithDescription("Total number of deliveries settled with an ack"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create deliveries_acked_total counter: %w", err)
	}

	om.nackedTotal, err = om.meter.Int64Counter(
		"deliveries_nacked_total",
		metric.WithDescription("Total number of deliveries returned for redelivery"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create deliveries_nacked_total counter: %w", err)
	}

	om.poisonTotal, err = om.meter.Int64Counter(
		"poison_messages_total",
		metric.WithDescription("Total number of undecodable messages discarded"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create poison_messages_total counter: %w", err)
	}

	return nil
}

func (om *OTELMetrics) RecordFetch(ctx context.Context, partition string, count int, duration time.Duration) {
	om.fetchedTotal.Add(ctx, int64(count),
		metric.WithAttributes(
			PartitionAttr(partition),
		),
	)

	om.fetchDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			PartitionAttr(partition),
		),
	)
}

func (om *OTELMetrics) RecordSettlement(ctx context.Context, partition string, acked, nacked int) {
	if acked > 0 {
		om.ackedTotal.Add(ctx, int64(acked),
			metric.WithAttributes(
				PartitionAttr(partition),
			),
		)
	}

	if nacked > 0 {
		om.nackedTotal.Add(ctx, int64(nacked),
			metric.WithAttributes(
				PartitionAttr(partition),
			),
		)
	}
}

func (om *OTELMetrics) RecordPoisonMessage(ctx context.Context) {
	om.poisonTotal.Add(ctx, 1)
}

func (om *OTELMetrics) Shutdown(ctx context.Context) error {
	if err := om.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}

	return nil
}
