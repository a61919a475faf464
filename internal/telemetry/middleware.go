// Package telemetry instruments received MCP requests with OpenTelemetry
// spans and metrics.
package telemetry

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/VikingOwl91/mcp-simple-demo"

type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithSkipMethods excludes methods (e.g. "ping") from instrumentation.
func WithSkipMethods(methods ...string) Option {
	return func(o *options) {
		for _, m := range methods {
			o.skipMethods[m] = true
		}
	}
}

// NewMiddleware returns receiving middleware that opens a server span named
// "mcp.<method>" per request and records request, error and latency metrics.
// Without options it uses the global providers, which are no-ops unless the
// process installs an SDK.
func NewMiddleware(opts ...Option) mcp.Middleware {
	o := &options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "mcp-simple-demo",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}

	tracer := o.tracerProvider.Tracer(instrumentationName)
	meter := o.meterProvider.Meter(instrumentationName)

	requests, _ := meter.Int64Counter(
		"mcp.server.requests",
		metric.WithDescription("Total number of MCP requests"),
		metric.WithUnit("{request}"),
	)
	failures, _ := meter.Int64Counter(
		"mcp.server.errors",
		metric.WithDescription("Total number of failed MCP requests"),
		metric.WithUnit("{error}"),
	)
	latency, _ := meter.Float64Histogram(
		"mcp.server.request.duration",
		metric.WithDescription("Duration of MCP requests"),
		metric.WithUnit("ms"),
	)

	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if o.skipMethods[method] {
				return next(ctx, method, req)
			}

			attrs := []attribute.KeyValue{
				attribute.String("mcp.method", method),
				attribute.String("service.name", o.serviceName),
			}

			ctx, span := tracer.Start(ctx, "mcp."+method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if name := targetName(req); name != "" {
				span.SetAttributes(attribute.String("mcp.target", name))
			}

			requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			start := time.Now()

			result, err := next(ctx, method, req)

			latency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0, metric.WithAttributes(attrs...))

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				failures.Add(ctx, 1, metric.WithAttributes(attrs...))
			case isToolError(result):
				span.SetStatus(codes.Error, "tool returned an error result")
				failures.Add(ctx, 1, metric.WithAttributes(attrs...))
			default:
				span.SetStatus(codes.Ok, "")
			}

			return result, err
		}
	}
}

// targetName picks the tool, prompt or resource a request addresses.
func targetName(req mcp.Request) string {
	switch r := req.(type) {
	case *mcp.CallToolRequest:
		if r != nil && r.Params != nil {
			return r.Params.Name
		}
	case *mcp.GetPromptRequest:
		if r != nil && r.Params != nil {
			return r.Params.Name
		}
	case *mcp.ReadResourceRequest:
		if r != nil && r.Params != nil {
			return r.Params.URI
		}
	}
	return ""
}

func isToolError(result mcp.Result) bool {
	r, ok := result.(*mcp.CallToolResult)
	return ok && r != nil && r.IsError
}
