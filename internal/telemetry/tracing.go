package telemetry

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/s1natex/tasklist-api/internal/config"
	"github.com/s1natex/tasklist-api/internal/logging"
)

// ShutdownFunc flushes and stops the installed tracer provider.
type ShutdownFunc func(context.Context) error

// Setup installs the global tracer provider selected by cfg.Exporter.
// stdout spans are written to w. With the "none" exporter the global
// no-op provider is left in place.
func Setup(ctx context.Context, cfg config.TracingConfig, w io.Writer) (ShutdownFunc, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch cfg.Exporter {
	case config.ExporterNone, "":
		return func(context.Context) error { return nil }, nil
	case config.ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case config.ExporterOTLP:
		exp, err = newOTLPExporter(ctx, cfg.Endpoint)
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.Service),
		attribute.String("service.instance.id", logging.InstanceID),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func newOTLPExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{}
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}
