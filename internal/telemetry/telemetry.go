// Package telemetry sets up OpenTelemetry tracing for the battle engine and
// the arena command layer. Export is configured with the standard
// OTEL_EXPORTER_OTLP_* variables; with no endpoint set the global provider
// stays a no-op and spans cost nothing.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "animearena"
	serviceVersion = "0.1.0"
)

type options struct {
	exporter sdktrace.SpanExporter
	ratio    float64
}

// Option configures Setup.
type Option func(*options)

// WithExporter sends spans to e instead of OTLP. Setup installs a provider
// even when no endpoint is configured.
func WithExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporter = e }
}

// WithSampleRatio keeps a fraction of root traces, clamped to [0,1]. Every
// trace is kept by default.
func WithSampleRatio(r float64) Option {
	return func(o *options) { o.ratio = min(1, max(0, r)) }
}

// Enabled reports whether an OTLP endpoint is configured.
func Enabled() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" ||
		os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") != ""
}

// Setup installs the global tracer provider and returns its shutdown
// function, which flushes pending spans. Without an endpoint or exporter it
// installs nothing and returns a no-op shutdown.
func Setup(ctx context.Context, opts ...Option) (shutdown func(context.Context) error, err error) {
	o := options{ratio: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if o.exporter == nil {
		if !Enabled() {
			return func(context.Context) error { return nil }, nil
		}
		// Reads the OTEL_EXPORTER_OTLP_* variables itself.
		if o.exporter, err = otlptracehttp.New(ctx); err != nil {
			return nil, err
		}
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
		resource.WithHost(),
		resource.WithOS(),
		resource.WithProcessRuntimeName(),
		resource.WithProcessRuntimeVersion(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(o.exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// Tracer returns a named tracer for one component, such as "combat".
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}
