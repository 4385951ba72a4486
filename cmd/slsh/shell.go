package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/KevoDB/sectionlist/pkg/common/iterator/bounded"
	"github.com/KevoDB/sectionlist/pkg/common/log"
	"github.com/KevoDB/sectionlist/pkg/config"
	"github.com/KevoDB/sectionlist/pkg/dataset"
	"github.com/KevoDB/sectionlist/pkg/render"
	"github.com/KevoDB/sectionlist/pkg/section"
	"github.com/KevoDB/sectionlist/pkg/stats"
	"github.com/KevoDB/sectionlist/pkg/telemetry"
)

// shell holds the state of an interactive session
type shell struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	label  string

	logger    log.Logger
	tel       telemetry.Telemetry
	collector *stats.AtomicCollector

	provider *dataset.Provider
	adapter  *render.Adapter

	metrics *http.Server
}

// newShell creates a session and installs its logger as the default one.
func newShell(cfg *config.Config, out, errOut io.Writer) *shell {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewStandardLogger(log.WithOutput(errOut), log.WithLevel(level))
	log.SetDefaultLogger(logger)

	sh := &shell{
		cfg:       cfg,
		out:       out,
		errOut:    errOut,
		logger:    logger,
		tel:       telemetry.NewNoop(),
		collector: stats.NewAtomicCollector(),
	}

	tel, err := telemetry.New(context.Background(), cfg.Telemetry, telemetry.WithOutput(errOut))
	if err != nil {
		log.Warn("Telemetry disabled: %v", err)
	} else {
		sh.tel = tel
	}

	if p, ok := sh.tel.(*telemetry.TelemetryProvider); ok && cfg.Telemetry.PrometheusAddr != "" {
		sh.serveMetrics(cfg.Telemetry.PrometheusAddr, p.Handler())
	}
	return sh
}

// serveMetrics exposes the prometheus scrape endpoint for the lifetime of
// the shell.
func (s *shell) serveMetrics(addr string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	s.metrics = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed: %v", err)
		}
	}()
	log.WithField("addr", addr).Info("Serving metrics on /metrics")
}

func (s *shell) close() {
	ctx := context.Background()
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			log.Warn("Metrics server shutdown failed: %v", err)
		}
	}
	if err := s.tel.Shutdown(ctx); err != nil {
		log.Warn("Telemetry shutdown failed: %v", err)
	}
}

func (s *shell) prompt() string {
	if s.provider != nil {
		return fmt.Sprintf("slsh:%s> ", s.provider.Path())
	}
	return "slsh> "
}

// open replaces the current dataset. The session keeps its dataset and
// configuration when the new one cannot be loaded.
func (s *shell) open(ctx context.Context, path string) error {
	dcfg := config.DatasetConfig{Path: path}

	provider, err := dataset.NewProvider(dcfg, s.cfg.Grouping,
		dataset.WithLogger(s.logger),
		dataset.WithStats(s.collector),
		dataset.WithTelemetry(s.tel),
	)
	if err != nil {
		return err
	}

	adapter, err := s.newAdapter(ctx, provider)
	if err != nil {
		return err
	}

	s.cfg.Update(func(c *config.Config) { c.Dataset = dcfg })
	s.provider = provider
	s.adapter = adapter
	return nil
}

// newAdapter builds an adapter with the current presentation settings.
// overrides are applied on top of them.
func (s *shell) newAdapter(ctx context.Context, provider *dataset.Provider, overrides ...section.Option) (*render.Adapter, error) {
	opts := append(s.cfg.AdapterOptions(),
		section.WithLogger(s.logger),
		section.WithMetrics(section.NewMetrics(s.tel)),
		section.WithStats(s.collector),
	)
	opts = append(opts, overrides...)
	return section.New[string, dataset.Record](ctx, provider, opts...)
}

// rebuild recreates the adapter with a changed presentation setting and
// commits the setting to the configuration once the adapter is built.
func (s *shell) rebuild(ctx context.Context, override section.Option, commit func(*config.Config)) error {
	if s.provider != nil {
		adapter, err := s.newAdapter(ctx, s.provider, override)
		if err != nil {
			return err
		}
		s.adapter = adapter
	}
	s.cfg.Update(commit)
	return nil
}

// regroup applies a grouping change and refreshes the list. If the refresh
// fails the provider goes back to its previous grouping.
func (s *shell) regroup(ctx context.Context, fn func(*config.GroupingConfig)) error {
	grouping := s.cfg.Grouping
	fn(&grouping)
	if s.provider != nil {
		previous := s.provider.Grouping()
		if err := s.provider.SetGrouping(grouping); err != nil {
			return err
		}
		if err := s.adapter.Refresh(ctx); err != nil {
			if rollbackErr := s.provider.SetGrouping(previous); rollbackErr != nil {
				s.logger.Warn("Failed to restore grouping: %v", rollbackErr)
			}
			return err
		}
	} else if _, err := dataset.Sorter(grouping); err != nil {
		return err
	}
	s.cfg.Update(func(c *config.Config) { c.Grouping = grouping })
	return nil
}

// exec runs one command line. It returns true when the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if !strings.HasPrefix(cmd, ".") {
		fmt.Fprintf(s.out, "Unknown command: %s\n", parts[0])
		return false
	}

	switch cmd {
	case ".help":
		fmt.Fprint(s.out, helpText)

	case ".exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return true

	case ".open":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing path argument")
			return false
		}
		if err := s.open(ctx, args[0]); err != nil {
			fmt.Fprintf(s.errOut, "Error opening dataset: %s\n", err)
			return false
		}
		fmt.Fprintf(s.out, "Dataset opened at %s: %d records in %d sections\n",
			args[0], len(s.provider.Records()), s.adapter.GroupedData().Len())

	case ".close":
		if s.provider == nil {
			fmt.Fprintln(s.out, "No dataset open")
			return false
		}
		fmt.Fprintf(s.out, "Dataset %s closed\n", s.provider.Path())
		s.provider = nil
		s.adapter = nil

	case ".reload":
		if !s.requireOpen() {
			return false
		}
		if err := s.adapter.Refresh(ctx); err != nil {
			fmt.Fprintf(s.errOut, "Error reloading dataset: %s\n", err)
			return false
		}
		fmt.Fprintf(s.out, "Reloaded: %d entries\n", s.adapter.ItemCount())

	case ".stats":
		s.printStats()

	case ".group":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing field argument")
			return false
		}
		mode := config.ModeValue
		if len(args) > 1 {
			mode = strings.ToLower(args[1])
		}
		s.report(s.regroup(ctx, func(g *config.GroupingConfig) {
			g.Field = args[0]
			g.Mode = mode
		}))

	case ".sort":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing field argument")
			return false
		}
		field := args[0]
		if strings.ToLower(field) == "none" {
			field = ""
		}
		desc := len(args) > 1 && strings.ToLower(args[1]) == "desc"
		s.report(s.regroup(ctx, func(g *config.GroupingConfig) {
			g.SortBy = field
			g.Descending = desc
		}))

	case ".grouporder":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing order argument")
			return false
		}
		s.report(s.regroup(ctx, func(g *config.GroupingConfig) {
			g.GroupOrder = strings.ToLower(args[0])
		}))

	case ".display":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing mode argument")
			return false
		}
		s.report(s.regroup(ctx, func(g *config.GroupingConfig) {
			g.Display = strings.ToLower(args[0])
		}))

	case ".order":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing order argument")
			return false
		}
		order, err := section.ParseOrder(args[0])
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %s\n", err)
			return false
		}
		s.report(s.rebuild(ctx, section.WithOrder(order), func(c *config.Config) {
			c.Order = order.String()
		}))

	case ".dividers":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Error: Missing on/off argument")
			return false
		}
		var enabled bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			enabled = true
		case "off", "false", "0":
			enabled = false
		default:
			fmt.Fprintf(s.errOut, "Error: expected on or off, got %s\n", args[0])
			return false
		}
		s.report(s.rebuild(ctx, section.WithDividers(enabled), func(c *config.Config) {
			c.Dividers = enabled
		}))

	case ".label":
		s.label = ""
		if len(args) > 0 {
			s.label = args[0]
		}
		fmt.Fprintln(s.out, "OK")

	case ".show":
		if !s.requireOpen() {
			return false
		}
		start, end := 0, bounded.Unbounded
		var err error
		if len(args) > 0 {
			if start, err = strconv.Atoi(args[0]); err != nil {
				fmt.Fprintf(s.errOut, "Error: invalid start %q\n", args[0])
				return false
			}
		}
		if len(args) > 1 {
			if end, err = strconv.Atoi(args[1]); err != nil {
				fmt.Fprintf(s.errOut, "Error: invalid end %q\n", args[1])
				return false
			}
		}
		n := render.Window(s.adapter, render.NewTextBinder(s.out, s.label), start, end)
		fmt.Fprintf(s.out, "%d of %d entries shown\n", n, s.adapter.ItemCount())

	case ".children":
		if !s.requireOpen() {
			return false
		}
		n := render.Children(s.adapter, render.NewTextBinder(s.out, s.label))
		fmt.Fprintf(s.out, "%d children\n", n)

	case ".sections":
		if !s.requireOpen() {
			return false
		}
		render.Index(s.out, s.adapter)

	case ".section":
		if !s.requireOpen() {
			return false
		}
		pos, ok := s.intArg(args, "position")
		if !ok {
			return false
		}
		idx := s.adapter.SectionForPosition(pos)
		keys := s.adapter.SectionKeys()
		if idx < len(keys) {
			fmt.Fprintf(s.out, "Position %d is in section %d (%s)\n", pos, idx, keys[idx])
		} else {
			fmt.Fprintf(s.out, "Position %d is in section %d\n", pos, idx)
		}

	case ".position":
		if !s.requireOpen() {
			return false
		}
		idx, ok := s.intArg(args, "section")
		if !ok {
			return false
		}
		fmt.Fprintf(s.out, "Section %d starts at position %d\n", idx, s.adapter.PositionForSection(idx))

	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", cmd)
	}
	return false
}

func (s *shell) requireOpen() bool {
	if s.adapter == nil {
		fmt.Fprintln(s.out, "No dataset open")
		return false
	}
	return true
}

func (s *shell) intArg(args []string, name string) (int, bool) {
	if len(args) < 1 {
		fmt.Fprintf(s.out, "Error: Missing %s argument\n", name)
		return 0, false
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: invalid %s %q\n", name, args[0])
		return 0, false
	}
	return v, true
}

func (s *shell) report(err error) {
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %s\n", err)
		return
	}
	fmt.Fprintln(s.out, "OK")
}

func (s *shell) printStats() {
	st := s.collector.GetStats()

	fmt.Fprintln(s.out, "Statistics:")
	fmt.Fprintf(s.out, "  Operations: %v loads, %v groupings, %v refreshes, %v lookups, %v binds\n",
		orZero(st["load_ops"]), orZero(st["group_ops"]), orZero(st["refresh_ops"]),
		orZero(st["lookup_ops"]), orZero(st["bind_ops"]))
	fmt.Fprintf(s.out, "  Dataset: %d records, %d bytes read\n", st["records"], st["bytes_read"])
	fmt.Fprintf(s.out, "  Snapshot: %d groups, %d values, %d entries\n",
		st["snapshot_groups"], st["snapshot_values"], st["snapshot_entries"])

	if errs, ok := st["errors"].(map[string]uint64); ok && len(errs) > 0 {
		names := make([]string, 0, len(errs))
		for name := range errs {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(s.out, "  Errors:")
		for _, name := range names {
			fmt.Fprintf(s.out, "    %s: %d\n", name, errs[name])
		}
	}
}

func orZero(v interface{}) interface{} {
	if v == nil {
		return 0
	}
	return v
}
