package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewTracerProviderStdout(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	tp, err := NewTracerProvider(ctx, Options{Service: "storefront", Version: "test", Exporter: "stdout", Output: &buf})
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := tp.Tracer("test").Start(ctx, "cart.AddProduct")
	span.End()
	if err := tp.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	if !strings.Contains(buf.String(), "cart.AddProduct") {
		t.Fatalf("span not exported, output: %s", buf.String())
	}
}

func TestNewTracerProviderNone(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Options{Service: "storefront", Exporter: "none"})
	if err != nil {
		t.Fatalf("NewTracerProvider: %v", err)
	}
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestNewTracerProviderUnknownExporter(t *testing.T) {
	if _, err := NewTracerProvider(context.Background(), Options{Exporter: "zipkin"}); err == nil {
		t.Fatal("expected error")
	}
}
