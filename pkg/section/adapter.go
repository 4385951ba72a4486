package section

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KevoDB/sectionlist/pkg/common/log"
	"github.com/KevoDB/sectionlist/pkg/group"
	"github.com/KevoDB/sectionlist/pkg/stats"
	"github.com/KevoDB/sectionlist/pkg/telemetry"
)

// ErrInvalidArgument is returned when a required argument is missing.
var ErrInvalidArgument = group.ErrInvalidArgument

// DataProvider supplies the grouped data an Adapter presents. Data is called
// once when the adapter is created and once per refresh.
type DataProvider[K, V any] interface {
	Data(ctx context.Context) (*group.Groups[K, V], error)
}

// ProviderFunc adapts a function to DataProvider.
type ProviderFunc[K, V any] func(ctx context.Context) (*group.Groups[K, V], error)

// Data implements DataProvider
func (f ProviderFunc[K, V]) Data(ctx context.Context) (*group.Groups[K, V], error) {
	return f(ctx)
}

// Binder receives the entry selected by Adapter.Bind. The presentation layer
// implements it to fill in whatever element shows the entry.
type Binder[K, V any] interface {
	// BindSection is called for a section header. first is true when the
	// header is at position 0.
	BindSection(key K, first bool)

	// BindChild is called for a value with its flattened position and its
	// global child index.
	BindChild(value V, position, childIndex int)

	// BindDivider is called for a divider.
	BindDivider(position int)
}

// Option configures an Adapter.
type Option func(*settings)

type settings struct {
	flatten FlattenOptions
	policy  OutOfRange
	logger  log.Logger
	metrics Metrics
	stats   stats.Collector
}

// WithDividers enables dividers between the children of a group.
func WithDividers(enabled bool) Option {
	return func(s *settings) {
		s.flatten.Dividers = enabled
	}
}

// WithOrder sets the group traversal order used for flattening.
func WithOrder(order Order) Option {
	return func(s *settings) {
		s.flatten.Order = order
	}
}

// WithOutOfRange sets the policy SectionForPosition applies past the last group.
func WithOutOfRange(policy OutOfRange) Option {
	return func(s *settings) {
		s.policy = policy
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics sets the telemetry metrics
func WithMetrics(metrics Metrics) Option {
	return func(s *settings) {
		s.metrics = metrics
	}
}

// WithStats sets the statistics collector
func WithStats(collector stats.Collector) Option {
	return func(s *settings) {
		s.stats = collector
	}
}

// Adapter keeps the current snapshot of a DataProvider's data and exposes it
// position by position. Reads always go through a single snapshot, so a read
// never mixes data from two refreshes. Refreshes are serialized.
type Adapter[K, V any] struct {
	settings settings

	mu        sync.Mutex // guards provider, observers and refreshes
	provider  DataProvider[K, V]
	observers []func(*Snapshot[K, V])

	snapshot atomic.Pointer[Snapshot[K, V]]
}

// New creates an adapter and loads the provider's data once.
func New[K, V any](ctx context.Context, provider DataProvider[K, V], opts ...Option) (*Adapter[K, V], error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: data provider must not be nil", ErrInvalidArgument)
	}

	a := &Adapter[K, V]{
		settings: settings{
			logger:  log.NewNop(),
			metrics: NewNoopMetrics(),
			stats:   stats.NewNop(),
		},
		provider: provider,
	}
	for _, opt := range opts {
		opt(&a.settings)
	}
	a.settings.logger = a.settings.logger.WithField("component", telemetry.ComponentAdapter)

	snap, err := a.load(ctx, provider)
	if err != nil {
		return nil, err
	}
	a.snapshot.Store(snap)
	return a, nil
}

// Refresh reloads the data from the current provider and replaces the
// snapshot. On error the previous snapshot stays in place.
func (a *Adapter[K, V]) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshLocked(ctx, a.provider)
}

// RefreshWith replaces the provider and reloads from it. The provider is only
// replaced if loading from it succeeds.
func (a *Adapter[K, V]) RefreshWith(ctx context.Context, provider DataProvider[K, V]) error {
	if provider == nil {
		return fmt.Errorf("%w: data provider must not be nil", ErrInvalidArgument)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.refreshLocked(ctx, provider); err != nil {
		return err
	}
	a.provider = provider
	return nil
}

func (a *Adapter[K, V]) refreshLocked(ctx context.Context, provider DataProvider[K, V]) error {
	snap, err := a.load(ctx, provider)
	if err != nil {
		a.settings.logger.Warn("Refresh failed, keeping previous snapshot: %v", err)
		return err
	}
	a.snapshot.Store(snap)

	for _, fn := range a.observers {
		fn(snap)
	}
	return nil
}

func (a *Adapter[K, V]) load(ctx context.Context, provider DataProvider[K, V]) (*Snapshot[K, V], error) {
	start := time.Now()

	g, err := provider.Data(ctx)
	if err != nil {
		a.settings.stats.TrackError("refresh_provider")
		a.settings.metrics.RecordRefresh(ctx, time.Since(start), 0, 0, a.settings.flatten.Dividers, err)
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	flattenStart := time.Now()
	snap := NewSnapshot(g, a.settings.flatten, a.settings.policy)
	a.settings.stats.TrackOperationWithLatency(stats.OpFlatten, uint64(time.Since(flattenStart).Nanoseconds()))

	elapsed := time.Since(start)
	a.settings.stats.TrackOperationWithLatency(stats.OpRefresh, uint64(elapsed.Nanoseconds()))
	a.settings.stats.TrackSnapshot(uint64(snap.groups.Len()), uint64(snap.groups.Count()), uint64(snap.ItemCount()))
	a.settings.metrics.RecordRefresh(ctx, elapsed, snap.groups.Len(), snap.ItemCount(), a.settings.flatten.Dividers, nil)

	a.settings.logger.Debug("Loaded %d groups into %d entries in %s", snap.groups.Len(), snap.ItemCount(), elapsed)
	return snap, nil
}

// OnChange registers fn to be called with the new snapshot after every
// successful refresh. fn runs while the refresh is still in progress and
// must not call Refresh, RefreshWith, OnChange or Provider.
func (a *Adapter[K, V]) OnChange(fn func(*Snapshot[K, V])) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// Provider returns the current data provider.
func (a *Adapter[K, V]) Provider() DataProvider[K, V] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.provider
}

// Snapshot returns the current snapshot.
func (a *Adapter[K, V]) Snapshot() *Snapshot[K, V] {
	return a.snapshot.Load()
}

// ItemCount returns the number of flattened entries.
func (a *Adapter[K, V]) ItemCount() int {
	return a.Snapshot().ItemCount()
}

// EntryAt returns the entry at position.
func (a *Adapter[K, V]) EntryAt(position int) (Entry[K, V], bool) {
	return a.Snapshot().EntryAt(position)
}

// EntryKind returns the kind of the entry at position.
func (a *Adapter[K, V]) EntryKind(position int) (Kind, bool) {
	return a.Snapshot().KindAt(position)
}

// GroupedData returns the grouped data of the current snapshot.
func (a *Adapter[K, V]) GroupedData() *group.Groups[K, V] {
	return a.Snapshot().Groups()
}

// ViewTypeCount returns 3 when dividers are enabled and 2 otherwise.
func (a *Adapter[K, V]) ViewTypeCount() int {
	return a.Snapshot().ViewTypeCount()
}

// IsEnabled reports whether the entry at position is a child.
func (a *Adapter[K, V]) IsEnabled(position int) bool {
	return a.Snapshot().IsEnabled(position)
}

// ItemID returns the positional identifier of the entry at position.
func (a *Adapter[K, V]) ItemID(position int) int64 {
	return a.Snapshot().ItemID(position)
}

// StableID returns the reorder-independent identifier of the entry at position.
func (a *Adapter[K, V]) StableID(position int) uint64 {
	return a.Snapshot().StableID(position)
}

// SectionKeys returns the section keys in mapping order.
func (a *Adapter[K, V]) SectionKeys() []K {
	a.settings.stats.TrackOperation(stats.OpLookup)
	return a.Snapshot().SectionKeys()
}

// PositionForSection returns the position of a section for fast scrolling.
func (a *Adapter[K, V]) PositionForSection(section int) int {
	snap := a.Snapshot()
	a.settings.stats.TrackOperation(stats.OpLookup)
	a.settings.metrics.RecordLookup(context.Background(), telemetry.OpTypePositionForSection,
		section >= 0 && section < snap.groups.Len())
	return snap.PositionForSection(section)
}

// SectionForPosition returns the section containing position for fast scrolling.
func (a *Adapter[K, V]) SectionForPosition(position int) int {
	section, inRange := a.Snapshot().locate(position)
	a.settings.stats.TrackOperation(stats.OpLookup)
	a.settings.metrics.RecordLookup(context.Background(), telemetry.OpTypeSectionForPosition, inRange)
	if !inRange {
		a.settings.logger.Debug("Position %d is outside the section index, resolved to section %d", position, section)
	}
	return section
}

// Bind passes the entry at position of the current snapshot to the matching
// Binder method. It returns false if position is out of range.
func (a *Adapter[K, V]) Bind(position int, binder Binder[K, V]) bool {
	return a.BindSnapshot(a.Snapshot(), position, binder)
}

// BindSnapshot is Bind against a snapshot the caller already holds, so that
// a pass over many positions reads from one refresh.
func (a *Adapter[K, V]) BindSnapshot(snap *Snapshot[K, V], position int, binder Binder[K, V]) bool {
	if snap == nil || !snap.Bind(position, binder) {
		return false
	}
	a.settings.stats.TrackOperation(stats.OpBind)
	return true
}
