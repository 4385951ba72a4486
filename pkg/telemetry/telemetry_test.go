// ABOUTME: Tests for core telemetry interface and no-op implementation functionality
// ABOUTME: Validates telemetry recording, span creation, and lifecycle management using real telemetry operations

package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

func TestNoopTelemetry(t *testing.T) {
	tel := NewNoop()

	ctx := context.Background()

	tel.RecordHistogram(ctx, "test.histogram", 1.5, attribute.String("key", "value"))
	tel.RecordCounter(ctx, "test.counter", 10, attribute.String("key", "value"))

	spanCtx, span := tel.StartSpan(ctx, "test.span", attribute.String("test", "value"))
	if spanCtx == nil {
		t.Error("StartSpan returned nil context")
	}
	if span == nil {
		t.Error("StartSpan returned nil span")
	}
	if span.SpanContext().IsValid() {
		t.Error("Expected a no-op span to carry an invalid span context")
	}
	span.End()

	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}

type recordingTelemetry struct {
	NoopTelemetry
	name  string
	value float64
}

func (r *recordingTelemetry) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
	r.name = name
	r.value = value
}

func TestRecordDuration(t *testing.T) {
	rec := &recordingTelemetry{}
	start := time.Now().Add(-50 * time.Millisecond)

	RecordDuration(context.Background(), rec, "sectionlist.refresh.duration", start)

	if rec.name != "sectionlist.refresh.duration" {
		t.Errorf("Expected histogram name to be recorded, got %q", rec.name)
	}
	if rec.value < 0.05 {
		t.Errorf("Expected duration of at least 0.05s, got %f", rec.value)
	}
}

func TestStatusFromError(t *testing.T) {
	if got := StatusFromError(nil); got != StatusSuccess {
		t.Errorf("Expected %q for nil error, got %q", StatusSuccess, got)
	}
	if got := StatusFromError(errors.New("boom")); got != StatusError {
		t.Errorf("Expected %q for non-nil error, got %q", StatusError, got)
	}
}
