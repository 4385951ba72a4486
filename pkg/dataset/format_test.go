package dataset

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/KevoDB/sectionlist/pkg/config"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		path, format, compression string
		wantFormat, wantComp      string
		wantErr                   bool
	}{
		{"books.json", "", "", config.FormatJSON, config.CompressionNone, false},
		{"/tmp/Books.JSONL", "", "", config.FormatJSONL, config.CompressionNone, false},
		{"events.ndjson.gz", "", "", config.FormatJSONL, config.CompressionGzip, false},
		{"events.json.zst", "", "", config.FormatJSON, config.CompressionZstd, false},
		{"dump.bin", "jsonl", "zstd", config.FormatJSONL, config.CompressionZstd, false},
		{"dump.bin", "", "", "", "", true},
		{"books.json", "xml", "", "", "", true},
		{"books.json", "", "lz4", "", "", true},
	}

	for _, tc := range testCases {
		format, compression, err := Detect(tc.path, tc.format, tc.compression)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Detect(%q): expected ErrUnsupportedFormat, got %v", tc.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Detect(%q): unexpected error: %v", tc.path, err)
			continue
		}
		if format != tc.wantFormat || compression != tc.wantComp {
			t.Errorf("Detect(%q): expected %s/%s, got %s/%s", tc.path, tc.wantFormat, tc.wantComp, format, compression)
		}
	}
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	return buf.Bytes()
}

func zstded(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer failed: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestDecompress(t *testing.T) {
	plain := []byte(`{"a": 1}`)

	testCases := []struct {
		name        string
		raw         []byte
		compression string
	}{
		{"none", plain, config.CompressionNone},
		{"gzip", gzipped(t, plain), config.CompressionGzip},
		{"zstd", zstded(t, plain), config.CompressionZstd},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decompress(tc.raw, tc.compression)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Errorf("expected %q, got %q", plain, got)
			}
		})
	}

	if _, err := Decompress(plain, config.CompressionGzip); err == nil {
		t.Errorf("expected error for invalid gzip data")
	}
}

func TestParse(t *testing.T) {
	array := []byte(`[{"title": "Dune", "year": 1965}, {"title": "Emma", "year": 1815}]`)
	records, err := Parse(array, config.FormatJSON)
	if err != nil {
		t.Fatalf("Parse array failed: %v", err)
	}
	if len(records) != 2 || records[1].GetFields()["title"].GetStringValue() != "Emma" {
		t.Errorf("unexpected records %v", records)
	}

	lines := []byte("{\"title\": \"Dune\"}\n\n  {\"title\": \"Emma\"}\n")
	records, err = Parse(lines, config.FormatJSONL)
	if err != nil {
		t.Fatalf("Parse lines failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected blank lines to be skipped, got %d records", len(records))
	}

	if _, err := Parse([]byte(`[1, 2]`), config.FormatJSON); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for non-object elements, got %v", err)
	}
	if _, err := Parse([]byte("{\"ok\": true}\n{broken"), config.FormatJSONL); err == nil {
		t.Errorf("expected error for malformed line")
	}
	if _, err := Parse(array, "yaml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for unknown format, got %v", err)
	}
}
