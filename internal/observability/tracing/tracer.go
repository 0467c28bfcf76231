// Package tracing provides OpenTelemetry tracing for the HTTP server and the
// summarization pipeline.
//
// Example usage:
//
//	shutdown := tracing.Init("content-summarizer", "1.0.0", 1.0)
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.GetTracer().Start(ctx, "summary.run")
//	defer span.End()
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "content-summarizer"

// GetTracer returns the tracer for creating spans. It is resolved from the
// global provider on every call so a provider installed later is honored.
func GetTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Init installs a global tracer provider and the W3C trace-context propagator.
// sampleRatio is the fraction of root spans recorded (0 disables, 1 records all);
// parent decisions are always respected. The returned function flushes and
// shuts the provider down.
func Init(serviceName, version string, sampleRatio float64) func(context.Context) error {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown
}
