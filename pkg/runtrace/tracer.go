// Package runtrace wires an OpenTelemetry tracer provider for sweep
// runs.
package runtrace

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	otelsemconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName identifies the sweep tracer scope.
const ScopeName = "symreg-tools/gpsweep"

// Setup installs a global tracer provider. An empty endpoint selects
// the pretty stdout exporter; otherwise spans go to an insecure
// OTLP/gRPC endpoint. The returned func flushes and shuts the provider
// down.
func Setup(serviceName string, endpoint string) (func(context.Context) error, error) {
	ctx := context.Background()

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			otelsemconv.SchemaURL,
			otelsemconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	var exporter sdktrace.SpanExporter
	if strings.TrimSpace(endpoint) == "" {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
	} else {
		clean := strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(clean),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the sweep tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(ScopeName)
}
