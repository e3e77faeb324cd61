// Package output serializes product records and writes export files.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/catalogx/pkg/product"
)

// Format represents output format types. The format string doubles as the
// export file extension.
type Format string

const (
	FormatXLSX  Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// DefaultSheetName is the worksheet records are written to in XLSX output.
const DefaultSheetName = "Sheet1"

// Formats lists every supported format.
var Formats = []Format{FormatXLSX, FormatCSV, FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Writer handles record serialization.
type Writer interface {
	// Write outputs a single record.
	Write(rec product.Record) error

	// WriteAll outputs multiple records.
	WriteAll(recs []product.Record) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty    bool
	indent    string
	sheetName string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithSheetName sets the XLSX worksheet name.
func WithSheetName(name string) WriterOption {
	return func(c *writerConfig) {
		if name != "" {
			c.sheetName = name
		}
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty:    true,
		indent:    "  ",
		sheetName: DefaultSheetName,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatXLSX:
		return NewXLSXWriter(w, cfg.sheetName), nil
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
