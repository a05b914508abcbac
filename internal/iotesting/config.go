// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gnames/gnstar/internal/iotable"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/gnames/gnstar/pkg/table"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "gnstar_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// Connection settings can be changed with GNSTAR_DATABASE_HOST,
// GNSTAR_DATABASE_PORT, GNSTAR_DATABASE_USER and GNSTAR_DATABASE_PASSWORD.
// The database name is always TestDatabaseName.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()

	var opts []config.Option
	if s := os.Getenv("GNSTAR_DATABASE_HOST"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if s := os.Getenv("GNSTAR_DATABASE_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if s := os.Getenv("GNSTAR_DATABASE_USER"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := os.Getenv("GNSTAR_DATABASE_PASSWORD"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	opts = append(opts, config.OptDatabaseDatabase(TestDatabaseName))
	cfg.Update(opts)

	return cfg
}

// SetupTempDirs points raw, staging and warehouse directories of cfg to
// a temporary directory. Raw and staging directories are created, the
// warehouse directory is left for the code under test. The SQLite export
// file is placed in the temporary directory as well.
//
// Returns the temporary root directory.
func SetupTempDirs(t *testing.T, cfg *config.Config) string {
	t.Helper()

	root := t.TempDir()
	raw := filepath.Join(root, "raw")
	stg := filepath.Join(root, "staging")
	for _, dir := range []string{raw, stg} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	cfg.Update([]config.Option{
		config.OptDirsRaw(raw),
		config.OptDirsStaging(stg),
		config.OptDirsWarehouse(filepath.Join(root, "warehouse")),
		config.OptExportSQLitePath(filepath.Join(root, "warehouse.sqlite")),
	})
	return root
}

// WriteTables writes tables to dir in the given format, creating dir if
// needed.
func WriteTables(
	t *testing.T,
	dir string,
	format iotable.Format,
	tables ...*table.Table,
) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	for _, tbl := range tables {
		res := iotable.Write(dir, tbl, iotable.Options{Format: format})
		if res.Err != nil {
			t.Fatalf("Failed to write table %s: %v", tbl.Name, res.Err)
		}
	}
}

// MustTable creates a table from rows and panics if a row has a wrong
// number of cells.
func MustTable(name string, cols []string, rows ...[]any) *table.Table {
	t := table.New(name, cols...)
	for _, r := range rows {
		if err := t.Append(r...); err != nil {
			panic(err)
		}
	}
	return t
}
