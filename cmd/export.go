/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
*/
package cmd

import (
	"github.com/gnames/gn"
	"github.com/gnames/gnstar/internal/ioexport"
	"github.com/spf13/cobra"
)

// getExportCmd returns the export command.
func getExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Load warehouse tables into SQLite or PostgreSQL",
		Long: `Load every warehouse table into a SQL database.

Every table is dropped, created and filled in one transaction.
SQL column types follow the values of the table. A record of the
export is added to the load_runs table.

Targets:
  sqlite    a database file (export.sqlite_path in config.yaml)
  postgres  a PostgreSQL database (database section of config.yaml),
            tables are loaded concurrently

Prerequisites:
  - Warehouse tables must exist (run 'gnstar build' first)

Examples:
  # Export to ./warehouse/warehouse.sqlite
  gnstar export

  # Export to another SQLite file
  gnstar export --sqlite-path /tmp/dw.sqlite

  # Export to PostgreSQL
  GNSTAR_DATABASE_HOST=db.local gnstar export -t postgres`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runExport()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	exportFlags(exportCmd)
	return exportCmd
}

func runExport() error {
	ctx, stop := runContext()
	defer stop()

	exp, err := ioexport.New(cfg)
	if err != nil {
		return err
	}
	return exp.Export(ctx)
}
