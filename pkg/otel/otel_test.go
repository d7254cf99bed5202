package otel

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInit_StdoutExporterWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(t.Context(), Config{ServiceName: "github-mcp-test", ServiceVersion: "1.2.3", UseStdout: true, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	_, span := otel.Tracer("otel_test").Start(t.Context(), "repo.Create")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "repo.Create") {
		t.Fatalf("span not exported: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "service.version") || !strings.Contains(buf.String(), "1.2.3") {
		t.Fatalf("service version missing from resource: %s", buf.String())
	}
}

func TestInit_NoExporter(t *testing.T) {
	shutdown, err := Init(t.Context(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	_, span := otel.Tracer("otel_test").Start(t.Context(), "noop")
	if !span.SpanContext().HasTraceID() {
		t.Fatal("expected a recording tracer provider")
	}
	span.End()
}
