package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jmylchreest/catalogx/pkg/product"
)

// XLSXWriter writes records to a single worksheet: a header row of column
// names, then one row per record. The workbook is only serialized on Flush.
type XLSXWriter struct {
	w         io.Writer
	sheetName string
	items     []product.Record
	flushed   bool
}

// NewXLSXWriter creates an XLSX writer targeting sheetName.
func NewXLSXWriter(w io.Writer, sheetName string) *XLSXWriter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &XLSXWriter{
		w:         w,
		sheetName: sheetName,
		items:     make([]product.Record, 0),
	}
}

// Write buffers a single record.
func (w *XLSXWriter) Write(rec product.Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *XLSXWriter) WriteAll(recs []product.Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Flush builds the workbook and writes it out. A workbook is written at
// most once; later calls are no-ops.
func (w *XLSXWriter) Flush() error {
	if w.flushed {
		return nil
	}
	w.flushed = true

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if w.sheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, w.sheetName); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	if err := w.setRow(f, 1, product.Columns); err != nil {
		return err
	}
	for i, rec := range w.items {
		if err := w.setRow(f, i+2, rec.Values()); err != nil {
			return err
		}
	}

	if err := f.Write(w.w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Close flushes the writer.
func (w *XLSXWriter) Close() error {
	return w.Flush()
}

func (w *XLSXWriter) setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(w.sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
