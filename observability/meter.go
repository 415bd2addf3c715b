package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Operation status values.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusFallback = "fallback"
	StatusCached   = "cached"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as the global one.
func InitMeter(ctx context.Context, cfg Config, svc ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Metrics holds the pipeline's instruments.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	chunksInflight    metric.Int64UpDownCounter
}

// NewMetrics creates instruments on meter. Pass nil to use the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	operationTotal, err := meter.Int64Counter("scribe.operations.total",
		metric.WithDescription("Pipeline operations by name and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.operations.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("scribe.operation.duration",
		metric.WithDescription("Pipeline operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.operation.duration histogram: %w", err)
	}

	chunksInflight, err := meter.Int64UpDownCounter("scribe.chunks.inflight",
		metric.WithDescription("Chunks currently being diarized"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.chunks.inflight counter: %w", err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		chunksInflight:    chunksInflight,
	}, nil
}

// NopMetrics returns instruments bound to the global provider, ignoring
// creation errors. Safe as a default before InitMeter runs.
func NopMetrics() *Metrics {
	m, err := NewMetrics(nil)
	if err != nil {
		return &Metrics{}
	}
	return m
}

// RecordOperation records one finished operation.
func (m *Metrics) RecordOperation(ctx context.Context, operation, status string, d time.Duration) {
	if m == nil || m.operationTotal == nil {
		return
	}
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// ChunkStarted and ChunkFinished track in-flight chunk workers.
func (m *Metrics) ChunkStarted(ctx context.Context) {
	if m != nil && m.chunksInflight != nil {
		m.chunksInflight.Add(ctx, 1)
	}
}

func (m *Metrics) ChunkFinished(ctx context.Context) {
	if m != nil && m.chunksInflight != nil {
		m.chunksInflight.Add(ctx, -1)
	}
}
