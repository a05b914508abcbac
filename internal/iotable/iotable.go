// Package iotable reads and writes tables as Parquet or CSV files.
// This is an impure I/O package used by the staging and warehouse stages.
//
// Writing never panics or returns an error to the caller. Failures are
// described by WriteResult so that one broken table does not stop a run.
package iotable

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gnames/gnstar/pkg/config"
	"github.com/gnames/gnstar/pkg/table"
)

// Format is a table file format.
type Format string

const (
	// Parquet is the primary columnar format.
	Parquet Format = "parquet"
	// CSV is the delimited text fallback.
	CSV Format = "csv"
)

// Ext returns the file extension of the format including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Options configure Write.
type Options struct {
	// Format is the primary format. Parquet falls back to CSV on failure.
	Format Format

	// Compression is the Parquet codec: snappy, gzip, zstd or none.
	Compression string
}

// NewOptions converts output settings into write options.
func NewOptions(cfg config.OutputConfig) Options {
	return Options{
		Format:      Format(cfg.Format),
		Compression: cfg.Compression,
	}
}

// WriteResult describes the outcome of Write.
type WriteResult struct {
	// Name of the table.
	Name string

	// Path of the written file. Empty when nothing was written.
	Path string

	// Format actually used.
	Format Format

	// Rows is the number of written rows.
	Rows int

	// Skipped is true for nil or empty tables.
	Skipped bool

	// Fallback holds the failure of the primary format when the table was
	// written as CSV instead.
	Fallback error

	// Err is set when the table could not be written at all.
	Err error
}

// OK is true when a file was written.
func (r WriteResult) OK() bool {
	return r.Path != "" && r.Err == nil
}

// Write stores t in dir as <name>.parquet, falling back to <name>.csv when
// Parquet fails. A file of the other format left by an earlier run is
// removed so that only one file per table remains.
func Write(dir string, t *table.Table, opts Options) WriteResult {
	if t.Empty() {
		res := WriteResult{Skipped: true}
		if t != nil {
			res.Name = t.Name
		}
		return res
	}
	res := WriteResult{Name: t.Name, Rows: t.Len()}

	if opts.Format != CSV {
		path := filepath.Join(dir, t.Name+Parquet.Ext())
		err := writeParquet(path, t, opts.Compression)
		if err == nil {
			res.Path, res.Format = path, Parquet
			removeStale(filepath.Join(dir, t.Name+CSV.Ext()))
			return res
		}
		removeStale(path)
		res.Fallback = err
		slog.Warn("Parquet write failed, falling back to CSV",
			"table", t.Name, "error", err)
	}

	path := filepath.Join(dir, t.Name+CSV.Ext())
	if err := writeCSV(path, t); err != nil {
		removeStale(path)
		if res.Fallback != nil {
			err = errors.Join(res.Fallback, err)
		}
		res.Err = WriteError(t.Name, err)
		return res
	}
	res.Path, res.Format = path, CSV
	if res.Fallback == nil {
		removeStale(filepath.Join(dir, t.Name+Parquet.Ext()))
	}
	return res
}

// removeStale deletes a regular file if it exists.
func removeStale(path string) {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if err = os.Remove(path); err != nil {
		slog.Warn("Cannot remove stale table file", "path", path, "error", err)
	}
}

// Locate returns the file of a named table in dir. Parquet is preferred
// over CSV.
func Locate(dir, name string) (string, error) {
	for _, f := range []Format{Parquet, CSV} {
		path := filepath.Join(dir, name+f.Ext())
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", NotFoundError(dir, name)
}

// ReadNamed locates and reads a table by name. The returned table carries
// that name.
func ReadNamed(dir, name string) (*table.Table, error) {
	path, err := Locate(dir, name)
	if err != nil {
		return nil, err
	}
	res, err := Read(path)
	if err != nil {
		return nil, err
	}
	res.Name = name
	return res, nil
}

// Read loads a Parquet or CSV file. The table is named after the file
// stem.
func Read(path string) (*table.Table, error) {
	var res *table.Table
	var err error
	switch FormatOf(path) {
	case Parquet:
		res, err = readParquet(path)
	case CSV:
		res, err = readCSV(path)
	default:
		return nil, FormatError(path)
	}
	if err != nil {
		return nil, ReadError(path, err)
	}
	base := filepath.Base(path)
	res.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return res, nil
}

// FormatOf detects a format from the file extension. It returns an empty
// format for unsupported files.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case Parquet.Ext():
		return Parquet
	case CSV.Ext():
		return CSV
	default:
		return ""
	}
}

// List returns all Parquet and CSV files in dir sorted by lower-cased
// stem, Parquet before CSV for equal stems.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", dir, err)
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() || FormatOf(e.Name()) == "" {
			continue
		}
		res = append(res, filepath.Join(dir, e.Name()))
	}
	sortFiles(res)
	return res, nil
}

func sortFiles(paths []string) {
	rank := func(p string) int {
		if FormatOf(p) == Parquet {
			return 0
		}
		return 1
	}
	stem := func(p string) string {
		base := strings.ToLower(filepath.Base(p))
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	slices.SortStableFunc(paths, func(a, b string) int {
		if c := strings.Compare(stem(a), stem(b)); c != 0 {
			return c
		}
		return rank(a) - rank(b)
	})
}
