package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/KevoDB/sectionlist/pkg/common/iterator/bounded"
	"github.com/KevoDB/sectionlist/pkg/common/log"
	"github.com/KevoDB/sectionlist/pkg/config"
	"github.com/KevoDB/sectionlist/pkg/dataset"
	"github.com/KevoDB/sectionlist/pkg/render"
	"github.com/KevoDB/sectionlist/pkg/section"
	"github.com/KevoDB/sectionlist/pkg/stats"
	"github.com/KevoDB/sectionlist/pkg/telemetry"
)

// Options holds the command line settings that are not part of the
// configuration file
type Options struct {
	ConfigPath string
	Label      string
	Start      int
	End        int
	ShowIndex  bool
	ShowStats  bool
	Children   bool
}

func main() {
	cfg, opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// parseFlags builds the configuration from an optional config file,
// SECTIONLIST_* environment variables and flags, in increasing precedence.
func parseFlags(fs *flag.FlagSet, args []string) (*config.Config, Options, error) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "sectionlist - render a dataset as a sectioned list\n\n")
		fmt.Fprintf(fs.Output(), "Usage: sectionlist [options] [dataset_path]\n\n")
		fmt.Fprintf(fs.Output(), "Records are read from a JSON array or JSON lines file, optionally\n")
		fmt.Fprintf(fs.Output(), "compressed with gzip (.gz) or zstd (.zst).\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}

	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Configuration file (JSON)")
	fs.StringVar(&opts.Label, "label", "", "Record field shown for each child (default: whole record)")
	fs.IntVar(&opts.Start, "start", 0, "First position to render")
	fs.IntVar(&opts.End, "end", bounded.Unbounded, "Position to stop rendering at (exclusive, -1 for all)")
	fs.BoolVar(&opts.ShowIndex, "index", false, "Print the section index")
	fs.BoolVar(&opts.ShowStats, "stats", false, "Print statistics")
	fs.BoolVar(&opts.Children, "children", false, "Render children only")

	format := fs.String("format", "", "Dataset format: json or jsonl (default: from extension)")
	compression := fs.String("compression", "", "Dataset compression: none, gzip or zstd (default: from extension)")
	groupBy := fs.String("group-by", "", "Record field to group by (dot path)")
	mode := fs.String("mode", "", "Grouping mode: value or initial")
	sortBy := fs.String("sort-by", "", "Record field that orders records inside a group")
	descending := fs.Bool("desc", false, "Sort records in descending order")
	groupOrder := fs.String("group-order", "", "Group order: first, key, key_desc or size")
	display := fs.String("display", "", "Key display: raw, upper, lower or title")
	dividers := fs.Bool("dividers", false, "Insert dividers between the children of a group")
	order := fs.String("order", "", "Group traversal: reverse or forward")
	outOfRange := fs.String("out-of-range", "", "Section index fallback past the end: last or first")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn or error")
	telemetryOn := fs.Bool("telemetry", false, "Enable telemetry export")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := config.NewDefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}
	cfg.LoadFromEnv()

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg.Update(func(c *config.Config) {
		if fs.NArg() > 0 {
			c.Dataset.Path = fs.Arg(0)
		}
		if set["format"] {
			c.Dataset.Format = *format
		}
		if set["compression"] {
			c.Dataset.Compression = *compression
		}
		if set["group-by"] {
			c.Grouping.Field = *groupBy
		}
		if set["mode"] {
			c.Grouping.Mode = *mode
		}
		if set["sort-by"] {
			c.Grouping.SortBy = *sortBy
		}
		if set["desc"] {
			c.Grouping.Descending = *descending
		}
		if set["group-order"] {
			c.Grouping.GroupOrder = *groupOrder
		}
		if set["display"] {
			c.Grouping.Display = *display
		}
		if set["dividers"] {
			c.Dividers = *dividers
		}
		if set["order"] {
			c.Order = *order
		}
		if set["out-of-range"] {
			c.OutOfRange = *outOfRange
		}
		if set["log-level"] {
			c.LogLevel = *logLevel
		}
		if set["telemetry"] {
			c.Telemetry.Enabled = *telemetryOn
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	if cfg.Dataset.Path == "" {
		return nil, opts, errors.New("no dataset path given")
	}
	return cfg, opts, nil
}

// run loads the dataset once and renders it to out. Logs and telemetry go
// to errOut.
func run(ctx context.Context, cfg *config.Config, opts Options, out, errOut io.Writer) (err error) {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewStandardLogger(log.WithOutput(errOut), log.WithLevel(level))
	log.SetDefaultLogger(logger)

	tel, err := telemetry.New(ctx, cfg.Telemetry, telemetry.WithOutput(errOut))
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := tel.Shutdown(context.Background()); shutdownErr != nil && err == nil {
			err = fmt.Errorf("telemetry shutdown: %w", shutdownErr)
		}
	}()

	collector := stats.NewAtomicCollector()

	provider, err := dataset.NewProvider(cfg.Dataset, cfg.Grouping,
		dataset.WithLogger(logger),
		dataset.WithStats(collector),
		dataset.WithTelemetry(tel),
	)
	if err != nil {
		return err
	}

	adapterOpts := append(cfg.AdapterOptions(),
		section.WithLogger(logger),
		section.WithMetrics(section.NewMetrics(tel)),
		section.WithStats(collector),
	)
	adapter, err := section.New[string, dataset.Record](ctx, provider, adapterOpts...)
	if err != nil {
		return err
	}

	binder := render.NewTextBinder(out, opts.Label)
	if opts.Children {
		render.Children(adapter, binder)
	} else {
		render.Window(adapter, binder, opts.Start, opts.End)
	}

	if opts.ShowIndex {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Section index:")
		render.Index(out, adapter)
	}

	if opts.ShowStats {
		s := collector.GetStats()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Statistics:")
		fmt.Fprintf(out, "  Dataset: %d records, %d bytes read\n", s["records"], s["bytes_read"])
		fmt.Fprintf(out, "  Snapshot: %d groups, %d values, %d entries\n",
			s["snapshot_groups"], s["snapshot_values"], s["snapshot_entries"])
	}

	log.Debug("Rendered %d entries from %s", adapter.ItemCount(), provider.Path())
	return nil
}
