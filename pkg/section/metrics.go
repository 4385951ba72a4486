// ABOUTME: Adapter telemetry metrics interface and implementation for tracking refreshes and index lookups
// ABOUTME: Provides instrumentation for refresh duration, snapshot sizes, and section lookup range hits

package section

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/KevoDB/sectionlist/pkg/telemetry"
)

// Metrics defines the interface for adapter telemetry operations.
// All metrics are optional - implementations can safely be no-op.
type Metrics interface {
	telemetry.ComponentMetrics

	// RecordRefresh records a refresh attempt and, on success, the size of the new snapshot.
	RecordRefresh(ctx context.Context, duration time.Duration, groups, entries int, dividers bool, err error)

	// RecordLookup records a section index lookup.
	RecordLookup(ctx context.Context, opType string, inRange bool)
}

// adapterMetrics implements Metrics using the telemetry interface.
type adapterMetrics struct {
	tel telemetry.Telemetry
}

// NewMetrics creates a new adapter metrics implementation.
// If tel is nil, returns a no-op implementation.
func NewMetrics(tel telemetry.Telemetry) Metrics {
	if tel == nil {
		return &noopMetrics{}
	}
	return &adapterMetrics{tel: tel}
}

// NewNoopMetrics creates a no-op metrics implementation for testing.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

// RecordRefresh records adapter refresh metrics.
func (m *adapterMetrics) RecordRefresh(ctx context.Context, duration time.Duration, groups, entries int, dividers bool, err error) {
	m.tel.RecordHistogram(ctx, "sectionlist.adapter.refresh.duration", duration.Seconds(),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentAdapter),
		attribute.String(telemetry.AttrStatus, telemetry.StatusFromError(err)),
	)

	m.tel.RecordCounter(ctx, "sectionlist.adapter.refresh.total", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentAdapter),
		attribute.String(telemetry.AttrOperationType, telemetry.OpTypeRefresh),
		attribute.String(telemetry.AttrStatus, telemetry.StatusFromError(err)),
	)

	if err != nil {
		return
	}

	m.tel.RecordHistogram(ctx, "sectionlist.adapter.snapshot.groups", float64(groups),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentAdapter),
	)

	m.tel.RecordHistogram(ctx, "sectionlist.adapter.snapshot.entries", float64(entries),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentAdapter),
		attribute.Bool(telemetry.AttrDividers, dividers),
	)
}

// RecordLookup records section index lookup metrics.
func (m *adapterMetrics) RecordLookup(ctx context.Context, opType string, inRange bool) {
	m.tel.RecordCounter(ctx, "sectionlist.adapter.lookup.total", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentAdapter),
		attribute.String(telemetry.AttrOperationType, opType),
		attribute.Bool(telemetry.AttrInRange, inRange),
	)
}

// Close releases any resources held by the metrics implementation.
func (m *adapterMetrics) Close() error {
	return nil
}

// noopMetrics provides a no-operation implementation for testing or disabled telemetry.
type noopMetrics struct{}

// RecordRefresh is a no-op.
func (n *noopMetrics) RecordRefresh(ctx context.Context, duration time.Duration, groups, entries int, dividers bool, err error) {
}

// RecordLookup is a no-op.
func (n *noopMetrics) RecordLookup(ctx context.Context, opType string, inRange bool) {}

// Close is a no-op.
func (n *noopMetrics) Close() error {
	return nil
}
