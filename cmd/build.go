/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
*/
package cmd

import (
	"github.com/gnames/gn"
	"github.com/gnames/gnstar/internal/iobuild"
	"github.com/spf13/cobra"
)

// getBuildCmd returns the build command.
func getBuildCmd() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build dimension and fact tables from staging",
		Long: `Build the star-schema warehouse from staging tables.

This command:
  1. Builds dimensions (customers, products, stores, geography)
     with surrogate keys
  2. Builds the date dimension from order dates, customer creation
     dates or a generated daily sequence
  3. Builds fact tables (sales, payments, shipments, web sessions,
     NPS responses) that reference dimensions by surrogate key
  4. Writes warehouse/manifest.yaml and prints a summary

Missing staging tables are reported and skipped.

Prerequisites:
  - Staging tables must exist (run 'gnstar stage' first)

Examples:
  gnstar build
  gnstar build --staging-dir /data/stg --warehouse-dir /data/dw`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runBuild()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return buildCmd
}

func runBuild() error {
	ctx, stop := runContext()
	defer stop()

	gn.Info("Building warehouse in <em>%s</em>", cfg.Dirs.Warehouse)
	return iobuild.New(cfg).Build(ctx)
}
