package tracer

import (
	"context"

	"eventhub-accounting-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "eventhub-accounting-be"

// InitTracer installs an OTLP HTTP exporter (Jaeger accepts OTLP on 4318).
// An empty endpoint leaves the global no-op provider in place.
// The returned function flushes and shuts the provider down.
func InitTracer(serviceName, endpoint string, log logger.ILogger) func(context.Context) error {
	if endpoint == "" {
		log.Info("TRACER", "OpenTelemetry tracing is disabled (set OTEL_EXPORTER_OTLP_ENDPOINT to enable)", nil)
		return func(context.Context) error { return nil }
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn("TRACER", "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Info("TRACER", "OpenTelemetry tracer initialized", map[string]interface{}{
		"endpoint": endpoint,
		"service":  serviceName,
	})

	return tp.Shutdown
}

// Tracer returns the engine tracer from the global provider, so spans are
// no-ops until InitTracer installs an exporter.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
