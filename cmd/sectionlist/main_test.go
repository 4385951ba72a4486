package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KevoDB/sectionlist/pkg/config"
)

const songs = `{"title": "Blue in Green", "artist": "Miles Davis", "year": 1959}
{"title": "So What", "artist": "Miles Davis", "year": 1959}
{"title": "Naima", "artist": "John Coltrane", "year": 1960}
`

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("sectionlist", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeSongs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.jsonl")
	if err := os.WriteFile(path, []byte(songs), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func TestParseFlags(t *testing.T) {
	path := writeSongs(t)

	cfg, opts, err := parseFlags(newFlagSet(), []string{
		"-group-by", "artist", "-dividers", "-order", "forward", "-label", "title", "-index", path,
	})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if cfg.Dataset.Path != path || cfg.Grouping.Field != "artist" || !cfg.Dividers || cfg.Order != "forward" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if opts.Label != "title" || !opts.ShowIndex {
		t.Errorf("options not applied: %+v", opts)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	if _, _, err := parseFlags(newFlagSet(), nil); err == nil {
		t.Errorf("expected error without dataset path")
	}
	if _, _, err := parseFlags(newFlagSet(), []string{"-order", "sideways", "x.json"}); err == nil {
		t.Errorf("expected error for invalid order")
	}
}

func TestParseFlagsConfigFile(t *testing.T) {
	path := writeSongs(t)
	cfgPath := filepath.Join(t.TempDir(), config.DefaultConfigFileName)

	fileCfg := config.NewDefaultConfig()
	fileCfg.Dataset.Path = path
	fileCfg.Grouping.Field = "year"
	fileCfg.Dividers = true
	if err := fileCfg.Save(cfgPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	cfg, _, err := parseFlags(newFlagSet(), []string{"-config", cfgPath, "-group-by", "artist"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if cfg.Dataset.Path != path || !cfg.Dividers {
		t.Errorf("expected values from config file, got %+v", cfg)
	}
	if cfg.Grouping.Field != "artist" {
		t.Errorf("expected flag to override config file, got %s", cfg.Grouping.Field)
	}
}

func TestRun(t *testing.T) {
	path := writeSongs(t)
	cfg, opts, err := parseFlags(newFlagSet(), []string{
		"-group-by", "artist", "-dividers", "-display", "upper", "-label", "title", "-index", "-stats", path,
	})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	var out, errOut bytes.Buffer
	if err := run(context.Background(), cfg, opts, &out, &errOut); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	// reverse traversal puts the last group first
	coltrane := strings.Index(got, "== JOHN COLTRANE ==")
	davis := strings.Index(got, "== MILES DAVIS ==")
	if coltrane < 0 || davis < 0 || coltrane > davis {
		t.Errorf("expected JOHN COLTRANE before MILES DAVIS, got:\n%s", got)
	}
	for _, want := range []string{"Naima", "----", "Section index:", "Statistics:", "3 records"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestRunMissingDataset(t *testing.T) {
	cfg, opts, err := parseFlags(newFlagSet(), []string{filepath.Join(t.TempDir(), "missing.json")})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	var out, errOut bytes.Buffer
	if err := run(context.Background(), cfg, opts, &out, &errOut); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
