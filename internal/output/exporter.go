package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/catalogx/internal/logger"
	"github.com/jmylchreest/catalogx/pkg/product"
)

// TimestampLayout is the day-first timestamp embedded in export file names.
const TimestampLayout = "02-01-2006-15-04-05"

// ErrNoRecords is returned when an export is requested for zero records.
var ErrNoRecords = errors.New("no records to export")

// maxNameAttempts bounds how many later seconds are tried when the
// timestamped file name is already taken.
const maxNameAttempts = 60

// ExportError reports a failed page export.
type ExportError struct {
	Page int
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("export page %d to %s: %v", e.Page, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ExporterConfig holds file export settings.
type ExporterConfig struct {
	Directory string
	FileName  string
	Format    Format
	SheetName string
	Location  *time.Location
	Pretty    bool   // indent json output
	Indent    string // json indentation when Pretty is set
}

// DefaultExporterConfig returns the export defaults.
func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{
		Directory: "exports",
		FileName:  "exported",
		Format:    FormatXLSX,
		SheetName: DefaultSheetName,
		Location:  time.Local,
		Pretty:    true,
		Indent:    "  ",
	}
}

// FileExporter writes each page's records to a new timestamped file.
type FileExporter struct {
	config ExporterConfig
	now    func() time.Time
}

// NewFileExporter creates a FileExporter, filling unset fields with defaults.
func NewFileExporter(cfg ExporterConfig) (*FileExporter, error) {
	defaults := DefaultExporterConfig()
	if cfg.Directory == "" {
		cfg.Directory = defaults.Directory
	}
	if cfg.FileName == "" {
		cfg.FileName = defaults.FileName
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	if cfg.SheetName == "" {
		cfg.SheetName = defaults.SheetName
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	if cfg.Indent == "" {
		cfg.Indent = defaults.Indent
	}
	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	return &FileExporter{config: cfg, now: time.Now}, nil
}

// Path returns the file an export started at t would write.
func (e *FileExporter) Path(t time.Time) string {
	name := fmt.Sprintf("%s-%s.%s", e.config.FileName, t.In(e.config.Location).Format(TimestampLayout), e.config.Format)
	return filepath.Join(e.config.Directory, name)
}

// Export writes records to a new file and returns its path. The directory is
// created if absent. Zero records is an error and no file is written. An
// existing file is never replaced: if the name for the current second is
// taken, the next free second is used.
func (e *FileExporter) Export(ctx context.Context, page int, records []product.Record) (string, error) {
	if len(records) == 0 {
		return "", &ExportError{Page: page, Err: ErrNoRecords}
	}
	if err := ctx.Err(); err != nil {
		return "", &ExportError{Page: page, Err: err}
	}

	if err := os.MkdirAll(e.config.Directory, 0o755); err != nil {
		return "", &ExportError{Page: page, Err: fmt.Errorf("create directory: %w", err)}
	}

	f, path, err := e.create(e.now())
	if err != nil {
		return "", &ExportError{Page: page, Path: path, Err: err}
	}

	if err := e.write(f, records); err != nil {
		_ = os.Remove(path)
		return "", &ExportError{Page: page, Path: path, Err: err}
	}

	if info, err := os.Stat(path); err == nil {
		logger.Debug("export written",
			"page", page,
			"path", path,
			"format", e.config.Format,
			"records", len(records),
			"size", humanize.Bytes(uint64(info.Size())))
	}

	return path, nil
}

// create exclusively opens the export file for t, moving to later seconds
// while the name is taken.
func (e *FileExporter) create(t time.Time) (*os.File, string, error) {
	t = t.Truncate(time.Second)
	var path string
	for range maxNameAttempts {
		path = e.Path(t)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, path, err
		}
		logger.Debug("export file name taken", "path", path)
		t = t.Add(time.Second)
	}
	return nil, path, fmt.Errorf("no free file name after %d attempts", maxNameAttempts)
}

func (e *FileExporter) write(f *os.File, records []product.Record) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := NewWriter(f, e.config.Format,
		WithSheetName(e.config.SheetName),
		WithPretty(e.config.Pretty),
		WithIndent(e.config.Indent))
	if err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return w.Close()
}
