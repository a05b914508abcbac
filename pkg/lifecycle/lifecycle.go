// Package lifecycle declares the stages of a gnstar run.
// Implementations are impure and live in internal/io* packages.
// Config is provided during construction.
package lifecycle

import (
	"context"
)

// Stager normalizes raw extracts into one staging table per canonical
// entity.
type Stager interface {
	// Stage discovers raw files, canonicalizes their names and columns,
	// parses date columns and writes staging tables. Failures of a single
	// file are logged and skipped. Only structural problems, like a
	// missing raw directory, are returned as errors.
	Stage(ctx context.Context) error
}

// Builder assembles the star-schema warehouse from staging tables.
type Builder interface {
	// Build creates dimension tables with surrogate keys, the date
	// dimension and fact tables, writes them to the warehouse directory
	// together with a run manifest.
	Build(ctx context.Context) error
}

// Exporter loads warehouse tables into a SQL database.
type Exporter interface {
	// Export replaces every warehouse table in the target database.
	Export(ctx context.Context) error
}
