package ioexport

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gnstar/pkg/table"
	_ "modernc.org/sqlite"
)

// sqliteMaxVars is the maximum number of bound parameters of one SQLite
// statement.
const sqliteMaxVars = 32766

const sqliteLoadRunsDDL = `CREATE TABLE IF NOT EXISTS load_runs (
	id TEXT PRIMARY KEY,
	build_run_id TEXT,
	target TEXT NOT NULL,
	tables INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	started_at TIMESTAMP,
	duration TEXT
)`

// sqliteTarget loads tables into a SQLite database file.
type sqliteTarget struct {
	path      string
	batchSize int
	db        *sql.DB
}

func newSQLite(path string, batchSize int) *sqliteTarget {
	return &sqliteTarget{path: path, batchSize: batchSize}
}

// Open creates the database file and its directory if needed.
func (s *sqliteTarget) Open(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ConnectionError("sqlite", s.path, err)
		}
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return ConnectionError("sqlite", s.path, err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return ConnectionError("sqlite", s.path, err)
	}
	s.db = db
	slog.Info("Opened SQLite database", "path", s.path)
	return nil
}

func (s *sqliteTarget) Jobs() int {
	return 1
}

// Load drops, creates and fills a table in one transaction.
func (s *sqliteTarget) Load(
	ctx context.Context,
	t *table.Table,
	progress func(int),
) (int, error) {
	if s.db == nil {
		return 0, NotConnectedError()
	}
	kinds := columnKinds(t)
	d := sqliteDialect

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, CreateTableError(t.Name, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, d.dropTable(t.Name)); err != nil {
		return 0, CreateTableError(t.Name, err)
	}
	q := d.createTable(t.Name, t.Columns, kinds)
	if _, err = tx.ExecContext(ctx, q); err != nil {
		return 0, CreateTableError(t.Name, err)
	}

	batch := s.rowsPerBatch(len(t.Columns))
	var saved int
	for i := 0; i < t.Len(); i += batch {
		end := min(i+batch, t.Len())
		args := make([]any, 0, (end-i)*len(t.Columns))
		for _, row := range t.Rows[i:end] {
			args = append(args, coerceRow(row, kinds)...)
		}
		q = d.insert(t.Name, t.Columns, end-i)
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return saved, InsertError(t.Name, err)
		}
		saved += end - i
		progress(end - i)
	}

	if err = tx.Commit(); err != nil {
		return 0, InsertError(t.Name, err)
	}
	return saved, nil
}

// rowsPerBatch keeps a batch within the SQLite parameter limit.
func (s *sqliteTarget) rowsPerBatch(cols int) int {
	res := max(sqliteMaxVars/max(cols, 1), 1)
	if s.batchSize > 0 {
		res = min(res, s.batchSize)
	}
	return res
}

// Audit appends the export to the load_runs table.
func (s *sqliteTarget) Audit(ctx context.Context, run *LoadRun) error {
	if s.db == nil {
		return NotConnectedError()
	}
	if _, err := s.db.ExecContext(ctx, sqliteLoadRunsDDL); err != nil {
		return AuditError(err)
	}
	q := `INSERT INTO load_runs
	(id, build_run_id, target, tables, failed, row_count, started_at, duration)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		run.ID, run.BuildRunID, run.Target, run.Tables,
		run.Failed, run.RowCount, run.StartedAt, run.Duration,
	)
	if err != nil {
		return AuditError(err)
	}
	return nil
}

func (s *sqliteTarget) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
