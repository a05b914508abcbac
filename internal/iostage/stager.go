// Package iostage implements the Stager interface.
// This is an impure I/O package that reads raw extracts and writes
// normalized staging tables.
package iostage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnstar/internal/ioreport"
	"github.com/gnames/gnstar/internal/iotable"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/gnames/gnstar/pkg/lifecycle"
	"github.com/gnames/gnstar/pkg/staging"
	"github.com/gnames/gnstar/pkg/table"
)

// stager implements the Stager interface.
type stager struct {
	cfg *config.Config
}

// New creates a new Stager.
func New(cfg *config.Config) lifecycle.Stager {
	return &stager{cfg: cfg}
}

// Stage normalizes every raw file into a staging table. Raw files are
// processed in sorted order and the first file of a canonical entity wins.
func (s *stager) Stage(ctx context.Context) error {
	startTime := time.Now()
	rawDir := s.cfg.Dirs.Raw
	stgDir := s.cfg.Dirs.Staging

	slog.Info("Starting staging", "raw_dir", rawDir, "staging_dir", stgDir)

	files, err := rawFiles(rawDir)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(stgDir, 0755); err != nil {
		return CreateDirError(stgDir, err)
	}

	if len(files) == 0 {
		slog.Warn("No raw files found", "raw_dir", rawDir)
		gn.Warn("No raw files found in <em>%s</em>", rawDir)
		return nil
	}

	gn.Info("Staging <em>%d</em> raw files from <em>%s</em>",
		len(files), rawDir)

	m := ioreport.New("stage")
	staged := make(map[string]string)
	for _, path := range files {
		select {
		case <-ctx.Done():
			return CancelledError(ctx.Err())
		default:
		}
		s.stageFile(path, staged, m)
	}

	m.Finish(startTime)
	if err = ioreport.Write(stgDir, m); err != nil {
		slog.Error("Cannot save staging manifest", "error", err)
		gn.PrintErrorMessage(err)
	}
	fmt.Println()
	ioreport.Render(os.Stdout, m)

	slog.Info("Staging complete",
		"written", m.Count(ioreport.Written)+m.Count(ioreport.Fallback),
		"failed", m.Count(ioreport.Failed),
		"duration", gnfmt.TimeString(time.Since(startTime).Seconds()),
	)
	return nil
}

// stageFile reads one raw file, normalizes it and writes it to staging.
// Every failure is logged and leaves the entity out of this run.
func (s *stager) stageFile(
	path string,
	staged map[string]string,
	m *ioreport.Manifest,
) {
	file := filepath.Base(path)
	name := staging.CanonicalName(file)

	if prev, ok := staged[name]; ok {
		slog.Info("Canonical table already staged, skipping file",
			"file", file, "table", name, "staged_from", prev)
		gn.Message("Skipping <em>%s</em>: <em>%s</em> was staged from %s",
			file, name, prev)
		return
	}

	raw, err := iotable.Read(path)
	if err != nil {
		slog.Warn("Cannot read raw file", "file", file, "error", err)
		gn.Warn("Cannot read <em>%s</em>, skipping it", file)
		return
	}
	staged[name] = file

	t := Normalize(raw)
	t.Name = name

	opts := iotable.NewOptions(s.cfg.Output)
	m.Add(file, iotable.Write(s.cfg.Dirs.Staging, t, opts))
}

// Normalize canonicalizes the column labels of a raw table and parses its
// date-like columns. Every date column gets a log record.
func Normalize(raw *table.Table) *table.Table {
	t := staging.CanonicalizeColumns(raw)
	t, reports := staging.ParseDates(t)
	for _, r := range reports {
		if r.Err != nil {
			slog.Warn("Date column left unparsed",
				"table", raw.Name, "column", r.Column, "error", r.Err)
			continue
		}
		slog.Debug("Parsed date column",
			"table", raw.Name,
			"column", r.Column,
			"parsed", r.Parsed,
			"nulled", r.Nulled,
		)
		if r.Nulled > 0 {
			slog.Info("Unparsable dates set to null",
				"table", raw.Name, "column", r.Column, "nulled", r.Nulled)
		}
	}
	return t
}

// rawFiles lists the raw directory. A missing directory is a structural
// error.
func rawFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, DirNotFoundError(dir, err)
	}
	if !info.IsDir() {
		return nil, DirNotFoundError(dir, fmt.Errorf("%s is not a directory", dir))
	}
	res, err := iotable.List(dir)
	if err != nil {
		return nil, ListDirError(dir, err)
	}
	return res, nil
}
