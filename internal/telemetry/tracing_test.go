package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/s1natex/tasklist-api/internal/config"
)

func TestSetup_None(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{Exporter: config.ExporterNone}, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetup_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), config.TracingConfig{
		Exporter: config.ExporterStdout,
		Service:  "tasklist-test",
	}, &buf)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "GET /v1/tasks")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "GET /v1/tasks") {
		t.Fatalf("expected exported span in output, got %q", out)
	}
	if !strings.Contains(out, "tasklist-test") {
		t.Errorf("expected service name in resource, got %q", out)
	}
}

func TestSetup_UnknownExporter(t *testing.T) {
	if _, err := Setup(context.Background(), config.TracingConfig{Exporter: "zipkin"}, nil); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}
