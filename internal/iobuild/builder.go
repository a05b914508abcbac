// Package iobuild implements the Builder interface.
// This is an impure I/O package that reads staging tables and writes the
// dimension and fact tables of the warehouse.
package iobuild

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnstar/internal/ioreport"
	"github.com/gnames/gnstar/internal/iotable"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/gnames/gnstar/pkg/lifecycle"
	"github.com/gnames/gnstar/pkg/staging"
	"github.com/gnames/gnstar/pkg/table"
	"github.com/gnames/gnstar/pkg/warehouse"
)

// builder implements the Builder interface.
type builder struct {
	cfg  *config.Config
	opts iotable.Options
}

// New creates a new Builder.
func New(cfg *config.Config) lifecycle.Builder {
	return &builder{cfg: cfg, opts: iotable.NewOptions(cfg.Output)}
}

// Build creates dimensions, the date dimension and fact tables from the
// current staging contents. Missing staging tables degrade the result but
// never stop the build.
func (b *builder) Build(ctx context.Context) error {
	startTime := time.Now()
	stgDir := b.cfg.Dirs.Staging
	dwDir := b.cfg.Dirs.Warehouse

	slog.Info("Starting warehouse build",
		"staging_dir", stgDir, "warehouse_dir", dwDir)

	info, err := os.Stat(stgDir)
	if err != nil || !info.IsDir() {
		return NoStagingError(stgDir, err)
	}
	if err = os.MkdirAll(dwDir, 0755); err != nil {
		return CreateDirError(dwDir, err)
	}

	src := newStagingTables(stgDir)
	m := ioreport.New("build")

	gn.Info("(1/3) Building dimensions...")
	dims := b.buildDims(src, m)

	if err = checkCtx(ctx); err != nil {
		return err
	}
	gn.Info("(2/3) Building date dimension...")
	b.buildDateDim(src, dims, m)

	gn.Info("(3/3) Building fact tables...")
	for _, schema := range warehouse.FactSchemas {
		if err = checkCtx(ctx); err != nil {
			return err
		}
		b.buildFact(schema, src, dims, m)
	}

	m.Finish(startTime)
	if err = ioreport.Write(dwDir, m); err != nil {
		slog.Error("Cannot save warehouse manifest", "error", err)
		gn.PrintErrorMessage(err)
	}
	fmt.Println()
	ioreport.Render(os.Stdout, m)

	slog.Info("Warehouse build complete",
		"run_id", m.RunID,
		"tables", m.Count(ioreport.Written)+m.Count(ioreport.Fallback),
		"failed", m.Count(ioreport.Failed),
		"duration", gnfmt.TimeString(time.Since(startTime).Seconds()),
	)
	return nil
}

func (b *builder) buildDims(
	src *stagingTables,
	m *ioreport.Manifest,
) warehouse.Dims {
	dims := make(warehouse.Dims)
	for _, spec := range warehouse.DimSpecs {
		t, name := src.first(spec.Sources...)
		if t == nil {
			slog.Warn("No staging input, dimension skipped",
				"dimension", spec.Name, "sources", spec.Sources)
			gn.Warn("No staging input for <em>%s</em> (%s)",
				spec.Name, strings.Join(spec.Sources, ", "))
			b.skip(m, spec.Name, "no staging input")
			continue
		}

		d := warehouse.BuildDim(spec, t)
		if d == nil {
			b.skip(m, spec.Name, "staging table is empty")
			continue
		}
		dims[spec.Name] = d
		slog.Info("Dimension built",
			"dimension", spec.Name,
			"source", name,
			"source_rows", t.Len(),
			"rows", d.Len(),
		)
		m.Add(name, iotable.Write(b.cfg.Dirs.Warehouse, d, b.opts))
	}
	return dims
}

func (b *builder) buildDateDim(
	src *stagingTables,
	dims warehouse.Dims,
	m *ioreport.Manifest,
) {
	orders, _ := src.first(staging.Orders, "sales_order")
	customers := src.get(staging.Customers)

	d, from := warehouse.BuildDateDim(orders, customers)
	if d == nil {
		slog.Warn("No dates found, date dimension skipped")
		gn.Warn("No dates found in orders or customers, " +
			"<em>dim_date</em> is not built")
		b.skip(m, warehouse.DimDate, "no dates")
		return
	}
	d.Name = warehouse.DimDate
	dims[warehouse.DimDate] = d
	slog.Info("Date dimension built", "source", from.String(), "days", d.Len())

	e := m.Add(from.String(), iotable.Write(b.cfg.Dirs.Warehouse, d, b.opts))
	e.Notes = append(e.Notes, "from "+from.String())
}

func (b *builder) buildFact(
	schema warehouse.FactSchema,
	src *stagingTables,
	dims warehouse.Dims,
	m *ioreport.Manifest,
) {
	primary, name := src.first(schema.Sources...)
	if primary == nil {
		slog.Warn("No staging input, fact table skipped",
			"fact", schema.Name, "sources", schema.Sources)
		gn.Warn("No staging input for <em>%s</em> (%s)",
			schema.Name, strings.Join(schema.Sources, ", "))
		b.skip(m, schema.Name, "no staging input")
		return
	}

	var header *table.Table
	if len(schema.Headers) > 0 {
		header, _ = src.first(schema.Headers...)
	}

	res := warehouse.BuildFact(schema, primary, header, dims)
	logFact(schema, res)

	e := m.Add(name, iotable.Write(b.cfg.Dirs.Warehouse, res.Table, b.opts))
	e.Missing = res.Projection.Missing
	var unresolved []string
	for _, r := range res.Resolutions {
		if r.Skipped {
			unresolved = append(unresolved, r.SK)
		}
	}
	if len(unresolved) > 0 {
		e.Notes = append(e.Notes,
			"unresolved: "+strings.Join(unresolved, ","))
	}
}

func logFact(schema warehouse.FactSchema, res warehouse.FactResult) {
	slog.Debug("Projecting fact table",
		"fact", schema.Name, "expected", schema.Expected())
	if req := res.Projection.MissingRequired; len(req) > 0 {
		slog.Warn("Required fact columns are missing",
			"fact", schema.Name, "columns", req)
		gn.Warn("<em>%s</em> lacks required columns: %s",
			schema.Name, strings.Join(req, ", "))
	}
	for _, r := range res.Resolutions {
		if r.Skipped {
			slog.Info("Surrogate key not resolved",
				"fact", schema.Name, "sk", r.SK)
			continue
		}
		slog.Debug("Surrogate key resolved",
			"fact", schema.Name, "sk", r.SK, "matched", r.Matched)
	}
	slog.Info("Fact table built",
		"fact", schema.Name,
		"source_rows", res.SourceRows,
		"rows", res.Table.Len(),
		"header_joined", res.HeaderJoined,
		"missing", res.Projection.Missing,
	)
}

// skip records a table that was not built.
func (b *builder) skip(m *ioreport.Manifest, name, note string) {
	e := m.Add("", iotable.WriteResult{Name: name, Skipped: true})
	e.Notes = append(e.Notes, note)
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return CancelledError(ctx.Err())
	default:
		return nil
	}
}
