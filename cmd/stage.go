/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
*/
package cmd

import (
	"github.com/gnames/gn"
	"github.com/gnames/gnstar/internal/iostage"
	"github.com/spf13/cobra"
)

// getStageCmd returns the stage command.
func getStageCmd() *cobra.Command {
	stageCmd := &cobra.Command{
		Use:   "stage",
		Short: "Normalize raw extracts into staging tables",
		Long: `Normalize raw extracts into one staging table per entity.

This command:
  1. Lists *.parquet and *.csv files in the raw directory
  2. Maps every file name to a canonical entity name
     (sales_order_item → order_items, channel → stores, etc.)
  3. Canonicalizes column labels: trims, lower-cases and replaces
     spaces with underscores ("Order Date " → order_date)
  4. Parses date columns, unparseable cells become nulls
  5. Writes staging tables and staging/manifest.yaml

Only the first file of every entity is staged, Parquet files win
over CSV files with the same name. Unreadable files are skipped.

Examples:
  # Stage ./raw into ./warehouse/staging
  gnstar stage

  # Use other directories and CSV output
  gnstar stage --raw-dir /data/raw --staging-dir /data/stg -f csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runStage()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return stageCmd
}

func runStage() error {
	ctx, stop := runContext()
	defer stop()

	gn.Info("Staging raw files from <em>%s</em>", cfg.Dirs.Raw)
	return iostage.New(cfg).Stage(ctx)
}
