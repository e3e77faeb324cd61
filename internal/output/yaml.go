package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/catalogx/pkg/product"
)

// YAMLWriter writes records as a YAML sequence.
type YAMLWriter struct {
	w       *bufio.Writer
	items   []product.Record
	flushed bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]product.Record, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(rec product.Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *YAMLWriter) WriteAll(recs []product.Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Flush writes the buffered records as a YAML sequence, once.
func (w *YAMLWriter) Flush() error {
	if w.flushed {
		return w.w.Flush()
	}
	w.flushed = true

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(w.items); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	return w.w.Flush()
}

// Close flushes and closes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
