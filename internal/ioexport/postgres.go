package ioexport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnames/gnstar/pkg/config"
	"github.com/gnames/gnstar/pkg/table"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pgMaxConns is the size of the connection pool.
const pgMaxConns = 10

// pgTarget loads tables into PostgreSQL with COPY.
type pgTarget struct {
	cfg  config.DatabaseConfig
	jobs int
	pool *pgxpool.Pool
}

func newPostgres(cfg config.DatabaseConfig, jobs int) *pgTarget {
	return &pgTarget{cfg: cfg, jobs: jobs}
}

// Open establishes a connection pool to PostgreSQL.
func (p *pgTarget) Open(ctx context.Context) error {
	cfg := p.cfg
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
	where := fmt.Sprintf("%s@%s:%d/%s",
		cfg.User, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError("postgres", where, err)
	}
	poolConfig.MaxConns = pgMaxConns
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError("postgres", where, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError("postgres", where, err)
	}
	p.pool = pool
	slog.Info("Connected to PostgreSQL", "database", where)
	return nil
}

// Jobs is limited by the pool size.
func (p *pgTarget) Jobs() int {
	return min(max(p.jobs, 1), pgMaxConns)
}

// Load replaces a table in one transaction. Rows are sent with COPY in
// batches of the configured size.
func (p *pgTarget) Load(
	ctx context.Context,
	t *table.Table,
	progress func(int),
) (int, error) {
	if p.pool == nil {
		return 0, NotConnectedError()
	}
	kinds := columnKinds(t)
	d := postgresDialect

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, CreateTableError(t.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, d.dropTable(t.Name)+" CASCADE"); err != nil {
		return 0, CreateTableError(t.Name, err)
	}
	q := d.createTable(t.Name, t.Columns, kinds)
	if _, err = tx.Exec(ctx, q); err != nil {
		return 0, CreateTableError(t.Name, err)
	}

	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10_000
	}

	var saved int
	for i := 0; i < t.Len(); i += batchSize {
		end := min(i+batchSize, t.Len())
		rows := make([][]any, 0, end-i)
		for _, row := range t.Rows[i:end] {
			rows = append(rows, coerceRow(row, kinds))
		}

		copyCount, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{t.Name},
			t.Columns,
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return saved, InsertError(t.Name, err)
		}
		saved += int(copyCount)
		progress(len(rows))
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, InsertError(t.Name, err)
	}
	return saved, nil
}

// Audit records the export in load_runs. The table is created or updated
// with GORM AutoMigrate.
func (p *pgTarget) Audit(ctx context.Context, run *LoadRun) error {
	if p.pool == nil {
		return NotConnectedError()
	}

	db := stdlib.OpenDBFromPool(p.pool)
	defer db.Close()

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return AuditError(err)
	}
	gormDB = gormDB.WithContext(ctx)

	if err = gormDB.AutoMigrate(&LoadRun{}); err != nil {
		return AuditError(err)
	}
	if err = gormDB.Create(run).Error; err != nil {
		return AuditError(err)
	}
	return nil
}

func (p *pgTarget) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
