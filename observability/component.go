package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
)

// Component owns the tracer and meter providers.
type Component struct {
	cfg    Config
	svc    ServiceInfo
	log    *logger.Logger
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the telemetry component.
func NewComponent(cfg Config, svc ServiceInfo, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, svc: svc, log: log.WithComponent("observability")}
}

func (c *Component) Name() string { return "observability" }

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	tp, err := InitTracer(ctx, c.cfg, c.svc)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	c.tracer = tp

	mp, err := InitMeter(ctx, c.cfg, c.svc)
	if err != nil {
		return fmt.Errorf("init meter: %w", err)
	}
	c.meter = mp

	c.log.Info("Telemetry export enabled", logger.Fields("endpoint", c.cfg.Endpoint, "sample_rate", c.cfg.SampleRate))
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tracer != nil {
		errs = append(errs, c.tracer.Shutdown(ctx))
	}
	if c.meter != nil {
		errs = append(errs, c.meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (c *Component) Health(ctx context.Context) component.Health {
	msg := "disabled"
	if c.cfg.Enabled {
		msg = c.cfg.Endpoint
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: msg}
}

func (c *Component) Describe() string {
	if !c.cfg.Enabled {
		return "otel disabled"
	}
	return "otlp " + c.cfg.Endpoint
}
