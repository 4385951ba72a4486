// Package dataset loads JSON records from disk and groups them into sections
// according to a grouping configuration.
package dataset

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KevoDB/sectionlist/pkg/config"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnknownField      = errors.New("unknown field")
)

// Record is a single JSON object of a dataset.
type Record = *structpb.Struct

// maxLineSize bounds a single JSON-lines record
const maxLineSize = 16 * 1024 * 1024

// Detect derives format and compression from a file name such as
// "books.jsonl.zst". Explicit values take precedence over detection.
func Detect(path, format, compression string) (string, string, error) {
	name := strings.ToLower(filepath.Base(path))

	detected := config.CompressionNone
	switch ext := filepath.Ext(name); ext {
	case ".gz", ".gzip":
		detected = config.CompressionGzip
		name = strings.TrimSuffix(name, ext)
	case ".zst", ".zstd":
		detected = config.CompressionZstd
		name = strings.TrimSuffix(name, ext)
	}
	if compression == "" {
		compression = detected
	}

	if format == "" {
		switch filepath.Ext(name) {
		case ".json":
			format = config.FormatJSON
		case ".jsonl", ".ndjson":
			format = config.FormatJSONL
		default:
			return "", "", fmt.Errorf("%w: cannot detect format of %s", ErrUnsupportedFormat, path)
		}
	}

	switch format {
	case config.FormatJSON, config.FormatJSONL:
	default:
		return "", "", fmt.Errorf("%w: format %q", ErrUnsupportedFormat, format)
	}
	switch compression {
	case config.CompressionNone, config.CompressionGzip, config.CompressionZstd:
	default:
		return "", "", fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, compression)
	}

	return format, compression, nil
}

// Decompress returns the decoded contents of raw.
func Decompress(raw []byte, compression string) ([]byte, error) {
	switch compression {
	case config.CompressionNone, "":
		return raw, nil

	case config.CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip stream: %w", err)
		}
		return data, nil

	case config.CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		data, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decode zstd stream: %w", err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, compression)
	}
}

// Parse decodes records from a JSON array of objects or from JSON lines,
// one object per non-blank line.
func Parse(data []byte, format string) ([]Record, error) {
	switch format {
	case config.FormatJSON:
		return parseArray(data)
	case config.FormatJSONL:
		return parseLines(data)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, format)
	}
}

func parseArray(data []byte) ([]Record, error) {
	var list structpb.ListValue
	if err := protojson.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}

	records := make([]Record, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrUnsupportedFormat, i)
		}
		records = append(records, s)
	}
	return records, nil
}

func parseLines(data []byte) ([]Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	records := make([]Record, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		rec := &structpb.Struct{}
		if err := protojson.Unmarshal(text, rec); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return records, nil
}
