package dataset

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/KevoDB/sectionlist/pkg/common/log"
	"github.com/KevoDB/sectionlist/pkg/config"
	"github.com/KevoDB/sectionlist/pkg/group"
	"github.com/KevoDB/sectionlist/pkg/section"
	"github.com/KevoDB/sectionlist/pkg/stats"
	"github.com/KevoDB/sectionlist/pkg/telemetry"
)

// Provider reads a dataset file on every call to Data and groups its records.
// When the file's bytes have not changed since the previous call, the
// previous grouping is returned without parsing again.
type Provider struct {
	path        string
	format      string
	compression string

	logger log.Logger
	stats  stats.Collector
	tel    telemetry.Telemetry

	mu       sync.Mutex
	grouping config.GroupingConfig
	digest   uint64
	records  []Record
	groups   *group.Groups[string, Record]
}

var _ section.DataProvider[string, Record] = (*Provider)(nil)

// ProviderOption configures a Provider
type ProviderOption func(*Provider)

// WithLogger sets the logger
func WithLogger(logger log.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithStats sets the statistics collector
func WithStats(collector stats.Collector) ProviderOption {
	return func(p *Provider) {
		p.stats = collector
	}
}

// WithTelemetry sets the telemetry used for load spans
func WithTelemetry(tel telemetry.Telemetry) ProviderOption {
	return func(p *Provider) {
		p.tel = tel
	}
}

// NewProvider validates the dataset and grouping settings and creates a
// Provider. The file is not read until Data is called.
func NewProvider(dataset config.DatasetConfig, grouping config.GroupingConfig, opts ...ProviderOption) (*Provider, error) {
	if dataset.Path == "" {
		return nil, fmt.Errorf("%w: dataset path must not be empty", section.ErrInvalidArgument)
	}
	format, compression, err := Detect(dataset.Path, dataset.Format, dataset.Compression)
	if err != nil {
		return nil, err
	}
	if _, err := Sorter(grouping); err != nil {
		return nil, err
	}

	p := &Provider{
		path:        dataset.Path,
		format:      format,
		compression: compression,
		grouping:    grouping,
		logger:      log.NewNop(),
		stats:       stats.NewNop(),
		tel:         telemetry.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithFields(map[string]interface{}{
		"component": telemetry.ComponentDataset,
		"path":      p.path,
	})
	return p, nil
}

// Data implements section.DataProvider
func (p *Provider) Data(ctx context.Context) (*group.Groups[string, Record], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := p.tel.StartSpan(ctx, "dataset.load",
		attribute.String(telemetry.AttrComponent, telemetry.ComponentDataset),
		attribute.String(telemetry.AttrFormat, p.format),
		attribute.String(telemetry.AttrCompression, p.compression),
	)
	defer span.End()

	start := time.Now()
	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.stats.TrackError("dataset_read")
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	p.stats.TrackBytesRead(uint64(len(raw)))
	digest := xxhash.Sum64(raw)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.groups != nil && digest == p.digest {
		p.logger.Debug("Dataset unchanged (digest %016x), reusing grouping", digest)
		return p.groups, nil
	}

	data, err := Decompress(raw, p.compression)
	if err != nil {
		p.stats.TrackError("dataset_decompress")
		span.RecordError(err)
		return nil, err
	}
	records, err := Parse(data, p.format)
	if err != nil {
		p.stats.TrackError("dataset_parse")
		span.RecordError(err)
		return nil, err
	}
	p.stats.TrackOperationWithLatency(stats.OpLoad, uint64(time.Since(start).Nanoseconds()))
	p.stats.TrackRecords(uint64(len(records)))

	groups, err := p.group(records)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.digest = digest
	p.records = records
	p.groups = groups
	p.tel.RecordCounter(ctx, "sectionlist.dataset.records", int64(len(records)),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentDataset),
	)
	p.logger.Debug("Loaded %d records into %d groups", len(records), groups.Len())
	return groups, nil
}

func (p *Provider) group(records []Record) (*group.Groups[string, Record], error) {
	start := time.Now()
	groups, err := Group(records, p.grouping)
	if err != nil {
		p.stats.TrackError("dataset_group")
		return nil, err
	}
	p.stats.TrackOperationWithLatency(stats.OpGroup, uint64(time.Since(start).Nanoseconds()))
	return groups, nil
}

// SetGrouping replaces the grouping settings. The next call to Data groups
// the dataset again even if the file is unchanged.
func (p *Provider) SetGrouping(grouping config.GroupingConfig) error {
	if _, err := Sorter(grouping); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.grouping = grouping
	p.groups = nil
	return nil
}

// Grouping returns the current grouping settings.
func (p *Provider) Grouping() config.GroupingConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grouping
}

// Records returns the records of the last successful load.
func (p *Provider) Records() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records
}

// Digest returns the xxhash digest of the dataset bytes of the last
// successful load.
func (p *Provider) Digest() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.digest
}

// Path returns the dataset path.
func (p *Provider) Path() string {
	return p.path
}
