package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/KevoDB/sectionlist/pkg/config"
	"github.com/KevoDB/sectionlist/pkg/section"
	"github.com/KevoDB/sectionlist/pkg/stats"
)

const booksJSONL = `{"title": "Dune", "genre": "scifi", "year": 1965}
{"title": "Emma", "genre": "classic", "year": 1815}
{"title": "Hyperion", "genre": "scifi", "year": 1989}
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func genreGrouping() config.GroupingConfig {
	return config.GroupingConfig{
		Field:      "genre",
		Mode:       config.ModeValue,
		GroupOrder: config.GroupOrderFirst,
		Display:    config.DisplayUpper,
	}
}

func TestProviderLoadsCompressedFiles(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name string
		data []byte
	}{
		{"books.jsonl", []byte(booksJSONL)},
		{"books.jsonl.gz", gzipped(t, []byte(booksJSONL))},
		{"books.jsonl.zst", zstded(t, []byte(booksJSONL))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			writeFile(t, path, tc.data)

			p, err := NewProvider(config.DatasetConfig{Path: path}, genreGrouping())
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			g, err := p.Data(context.Background())
			if err != nil {
				t.Fatalf("Data failed: %v", err)
			}
			if got, want := g.Keys(), []string{"SCIFI", "CLASSIC"}; !slices.Equal(got, want) {
				t.Errorf("expected keys %v, got %v", want, got)
			}
			if len(p.Records()) != 3 {
				t.Errorf("expected 3 records, got %d", len(p.Records()))
			}
		})
	}
}

func TestProviderReusesUnchangedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	writeFile(t, path, []byte(booksJSONL))

	collector := stats.NewAtomicCollector()
	p, err := NewProvider(config.DatasetConfig{Path: path}, genreGrouping(), WithStats(collector))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	first, err := p.Data(context.Background())
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	second, err := p.Data(context.Background())
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if first != second {
		t.Errorf("expected unchanged data to reuse the grouping")
	}
	if got := collector.GetStats()["group_ops"]; got != uint64(1) {
		t.Errorf("expected a single grouping pass, got %v", got)
	}

	digest := p.Digest()
	writeFile(t, path, []byte(booksJSONL+`{"title": "Ivanhoe", "genre": "classic", "year": 1819}`+"\n"))
	third, err := p.Data(context.Background())
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if third == second || third.Count() != 4 {
		t.Errorf("expected changed data to be regrouped, got %d values", third.Count())
	}
	if p.Digest() == digest {
		t.Errorf("expected digest to change with the file")
	}
}

func TestProviderSetGrouping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.jsonl")
	writeFile(t, path, []byte(booksJSONL))

	p, err := NewProvider(config.DatasetConfig{Path: path}, genreGrouping())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if _, err := p.Data(context.Background()); err != nil {
		t.Fatalf("Data failed: %v", err)
	}

	grouping := genreGrouping()
	grouping.Mode = config.ModeInitial
	grouping.Field = "title"
	grouping.GroupOrder = config.GroupOrderKeyDesc
	if err := p.SetGrouping(grouping); err != nil {
		t.Fatalf("SetGrouping failed: %v", err)
	}

	g, err := p.Data(context.Background())
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if got, want := g.Keys(), []string{"H", "E", "D"}; !slices.Equal(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}

	grouping.GroupOrder = "shuffled"
	if err := p.SetGrouping(grouping); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProviderErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewProvider(config.DatasetConfig{}, genreGrouping()); !errors.Is(err, section.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty path, got %v", err)
	}
	if _, err := NewProvider(config.DatasetConfig{Path: filepath.Join(dir, "books.csv")}, genreGrouping()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	p, err := NewProvider(config.DatasetConfig{Path: filepath.Join(dir, "missing.json")}, genreGrouping())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if _, err := p.Data(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Data(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProviderDrivesAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	writeFile(t, path, []byte(`[
		{"title": "Dune", "genre": "scifi"},
		{"title": "Emma", "genre": "classic"},
		{"title": "Hyperion", "genre": "scifi"}
	]`))

	p, err := NewProvider(config.DatasetConfig{Path: path}, genreGrouping())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	a, err := section.New[string, Record](context.Background(), p, section.WithDividers(true))
	if err != nil {
		t.Fatalf("section.New failed: %v", err)
	}

	// reverse traversal: CLASSIC first, then SCIFI with a divider
	want := []section.Kind{
		section.KindSection, section.KindChild,
		section.KindSection, section.KindChild, section.KindChildDivider, section.KindChild,
	}
	if a.ItemCount() != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), a.ItemCount())
	}
	for i, kind := range want {
		if got, _ := a.EntryKind(i); got != kind {
			t.Errorf("position %d: expected %s, got %s", i, kind, got)
		}
	}
	if e, _ := a.EntryAt(0); e.String() != "Section(CLASSIC)" {
		t.Errorf("expected CLASSIC first, got %s", e)
	}
}
