/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getRunCmd returns the run command.
func getRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run stage and build in order",
		Long: `Run the whole pipeline: stage raw files, then build the warehouse.

The build starts only when staging finished without a structural
error, like a missing raw directory.

Examples:
  gnstar run
  gnstar run --raw-dir /data/raw --warehouse-dir /data/dw`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runAll()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return runCmd
}

func runAll() error {
	start := time.Now()
	if err := runStage(); err != nil {
		return err
	}
	if err := runBuild(); err != nil {
		return err
	}
	gn.Info("Pipeline finished in <em>%s</em>",
		gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}

// runContext is cancelled on interrupt.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
}
