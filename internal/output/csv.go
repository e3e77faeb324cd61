package output

import (
	"encoding/csv"
	"io"

	"github.com/jmylchreest/catalogx/pkg/product"
)

// CSVWriter writes a header row of column names followed by one row per
// record.
type CSVWriter struct {
	w          *csv.Writer
	headerDone bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes a single record, preceded by the header on first use.
func (w *CSVWriter) Write(rec product.Record) error {
	if err := w.header(); err != nil {
		return err
	}
	return w.w.Write(rec.Values())
}

// WriteAll writes multiple records.
func (w *CSVWriter) WriteAll(recs []product.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the header if nothing was written yet, then flushes.
func (w *CSVWriter) Flush() error {
	if err := w.header(); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.Flush()
}

func (w *CSVWriter) header() error {
	if w.headerDone {
		return nil
	}
	w.headerDone = true
	return w.w.Write(product.Columns)
}
