// Package ioexport implements the Exporter interface.
// This is an impure I/O package that loads warehouse tables into SQLite
// or PostgreSQL.
package ioexport

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnstar/internal/ioreport"
	"github.com/gnames/gnstar/internal/iotable"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/gnames/gnstar/pkg/lifecycle"
	"github.com/gnames/gnstar/pkg/table"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// target is a database that receives warehouse tables.
type target interface {
	// Open connects to the database.
	Open(ctx context.Context) error

	// Load replaces a table with the contents of t. The progress function
	// receives the number of rows saved by every batch.
	Load(ctx context.Context, t *table.Table, progress func(int)) (int, error)

	// Audit records a finished export.
	Audit(ctx context.Context, run *LoadRun) error

	// Jobs is the number of tables that can be loaded concurrently.
	Jobs() int

	// Close releases the connection.
	Close() error
}

// exporter implements the Exporter interface.
type exporter struct {
	cfg    *config.Config
	target target
}

// New creates an Exporter for the configured target.
func New(cfg *config.Config) (lifecycle.Exporter, error) {
	var tgt target
	switch cfg.Export.Target {
	case "sqlite":
		tgt = newSQLite(cfg.Export.SQLitePath, cfg.Database.BatchSize)
	case "postgres":
		tgt = newPostgres(cfg.Database, cfg.JobsNumber)
	default:
		return nil, TargetError(cfg.Export.Target)
	}
	return &exporter{cfg: cfg, target: tgt}, nil
}

// tableLoad is the outcome of loading one table.
type tableLoad struct {
	name string
	rows int
	err  error
}

// Export reads every table of the warehouse directory and loads it into
// the target. A table that fails is logged and the others are still
// loaded. It fails only when no table could be loaded.
func (e *exporter) Export(ctx context.Context) error {
	startTime := time.Now()
	dwDir := e.cfg.Dirs.Warehouse

	tables, err := readWarehouse(dwDir)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		slog.Warn("No warehouse tables to export", "dir", dwDir)
		gn.Warn("No warehouse tables found in <em>%s</em>", dwDir)
		return nil
	}

	if err = e.target.Open(ctx); err != nil {
		return err
	}
	defer e.target.Close()

	var total int
	for _, t := range tables {
		total += t.Len()
	}
	gn.Info("Exporting <em>%d</em> tables (%s rows) to <em>%s</em>",
		len(tables), humanize.Comma(int64(total)), e.cfg.Export.Target)

	loads, err := e.loadTables(ctx, tables, total)
	if err != nil {
		return err
	}

	run := &LoadRun{
		ID:        uuid.NewString(),
		Target:    e.cfg.Export.Target,
		StartedAt: startTime.UTC(),
	}
	if m, err := ioreport.Read(dwDir); err == nil {
		run.BuildRunID = m.RunID
	} else {
		slog.Debug("Warehouse manifest not available", "error", err)
	}

	for _, l := range loads {
		if l.err != nil {
			run.Failed++
			slog.Error("Cannot export table", "table", l.name, "error", l.err)
			gn.PrintErrorMessage(l.err)
			continue
		}
		run.Tables++
		run.RowCount += int64(l.rows)
		slog.Info("Table exported", "table", l.name, "rows", l.rows)
	}
	run.Duration = gnfmt.TimeString(time.Since(startTime).Seconds())

	if err = e.target.Audit(ctx, run); err != nil {
		slog.Warn("Cannot record load run", "error", err)
		gn.PrintErrorMessage(err)
	}

	slog.Info("Export complete",
		"run_id", run.ID,
		"target", run.Target,
		"tables", run.Tables,
		"failed", run.Failed,
		"rows", run.RowCount,
		"duration", run.Duration,
	)
	gn.Info(`Export complete
Tables loaded: %d, failed %d, rows %s.
Elapsed time: <em>%s</em>`,
		run.Tables, run.Failed, humanize.Comma(run.RowCount), run.Duration)

	if run.Failed > 0 && run.Tables == 0 {
		return AllTablesFailedError(run.Failed)
	}
	return nil
}

// loadTables loads tables concurrently, limited by the target.
func (e *exporter) loadTables(
	ctx context.Context,
	tables []*table.Table,
	total int,
) ([]tableLoad, error) {
	bar := newProgressBar(total, "Exporting rows: ")
	defer bar.Finish()

	var mu sync.Mutex
	progress := func(n int) {
		mu.Lock()
		bar.Add(n)
		mu.Unlock()
	}

	res := make([]tableLoad, len(tables))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.target.Jobs(), 1))
	for i, t := range tables {
		g.Go(func() error {
			n, err := e.target.Load(gCtx, t, progress)
			res[i] = tableLoad{name: t.Name, rows: n, err: err}
			return gCtx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, CancelledError(err)
	}
	return res, nil
}

// readWarehouse reads all tables of the warehouse directory. Unreadable
// files are logged and skipped. When a table exists in both formats the
// Parquet file is used.
func readWarehouse(dir string) ([]*table.Table, error) {
	files, err := iotable.List(dir)
	if err != nil {
		return nil, WarehouseDirError(dir, err)
	}
	var res []*table.Table
	seen := make(map[string]struct{})
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if _, ok := seen[name]; ok {
			continue
		}
		t, err := iotable.Read(f)
		if err != nil {
			slog.Warn("Cannot read warehouse table", "path", f, "error", err)
			gn.PrintErrorMessage(err)
			continue
		}
		seen[name] = struct{}{}
		if t.Empty() {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}
