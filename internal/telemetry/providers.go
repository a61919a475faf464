package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers owns SDK tracer and meter providers for the process.
type Providers struct {
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

// NewWriterProviders builds providers whose exporters write JSON lines to w.
// Metrics are pushed every interval; zero keeps the SDK default.
func NewWriterProviders(w io.Writer, serviceName string, interval time.Duration) (*Providers, error) {
	spans, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}
	metrics, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	var readerOpts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}

	return &Providers{
		tracer: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spans),
			sdktrace.WithResource(res),
		),
		meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics, readerOpts...)),
			sdkmetric.WithResource(res),
		),
	}, nil
}

// Options points the middleware at these providers.
func (p *Providers) Options() []Option {
	return []Option{WithTracerProvider(p.tracer), WithMeterProvider(p.meter)}
}

// Install makes these the global providers.
func (p *Providers) Install() {
	otel.SetTracerProvider(p.tracer)
	otel.SetMeterProvider(p.meter)
}

// Shutdown flushes pending spans and metrics and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.tracer.Shutdown(ctx), p.meter.Shutdown(ctx))
}
