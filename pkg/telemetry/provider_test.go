// ABOUTME: Tests for telemetry provider creation and configuration handling using real provider operations
// ABOUTME: Validates provider initialization, stdout export on shutdown, prometheus scraping, and no-op fallback

package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestNewDisabledReturnsNoop(t *testing.T) {
	tel, err := New(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := tel.(*NoopTelemetry); !ok {
		t.Errorf("Expected *NoopTelemetry for disabled config, got %T", tel)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = ""

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestProviderExportsToStdout(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = "sectionlist-test"

	ctx := context.Background()
	tel, err := New(ctx, cfg, WithOutput(&buf))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	provider, ok := tel.(*TelemetryProvider)
	if !ok {
		t.Fatalf("Expected *TelemetryProvider, got %T", tel)
	}

	attrs := []attribute.KeyValue{attribute.String(AttrComponent, ComponentAdapter)}
	tel.RecordCounter(ctx, "sectionlist.refresh.count", 1, attrs...)
	tel.RecordCounter(ctx, "sectionlist.refresh.count", 2, attrs...)
	tel.RecordHistogram(ctx, "sectionlist.refresh.duration", 0.5, attrs...)

	_, span := tel.StartSpan(ctx, "adapter.refresh", attrs...)
	if !span.SpanContext().IsValid() {
		t.Error("Expected a sampled span with a valid span context")
	}
	span.End()

	if len(provider.counters) != 1 || len(provider.histograms) != 1 {
		t.Errorf("Expected instruments to be cached once, got %d counters / %d histograms",
			len(provider.counters), len(provider.histograms))
	}

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"adapter.refresh", "sectionlist.refresh.count", "sectionlist-test"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected exported output to contain %q", want)
		}
	}
}

func TestProviderServesPrometheus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = "sectionlist-test"
	cfg.Exporters = []string{"prometheus"}

	ctx := context.Background()
	tel, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer tel.Shutdown(ctx)

	provider, ok := tel.(*TelemetryProvider)
	if !ok {
		t.Fatalf("Expected *TelemetryProvider, got %T", tel)
	}

	tel.RecordCounter(ctx, "sectionlist.refresh.count", 3,
		attribute.String(AttrComponent, ComponentAdapter))

	rec := httptest.NewRecorder()
	provider.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"sectionlist_refresh_count", `component="adapter"`, "sectionlist-test"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected scrape to contain %q, got:\n%s", want, body)
		}
	}
}
