package cmd

import (
	"fmt"
	"os"

	gnstar "github.com/gnames/gnstar/pkg"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/spf13/cobra"
)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", gnstar.Version, gnstar.Build)
		os.Exit(0)
	}
}

// dirFlags adds pipeline flags shared by all subcommands.
func dirFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("raw-dir", "", "directory with raw extracts")
	pf.String("staging-dir", "", "directory for staging tables")
	pf.String("warehouse-dir", "", "directory for warehouse tables")
	pf.StringP("format", "f", "", "output format: parquet or csv")
}

// exportFlags adds flags of the export command.
func exportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "export target: sqlite or postgres")
	cmd.Flags().String("sqlite-path", "", "SQLite database file")
}

// flagOptions converts explicitly set flags into config options.
func flagOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := []struct {
		name string
		opt  func(string) config.Option
	}{
		{"raw-dir", config.OptDirsRaw},
		{"staging-dir", config.OptDirsStaging},
		{"warehouse-dir", config.OptDirsWarehouse},
		{"format", config.OptOutputFormat},
		{"target", config.OptExportTarget},
		{"sqlite-path", config.OptExportSQLitePath},
	}
	for _, v := range flags {
		if !cmd.Flags().Changed(v.name) {
			continue
		}
		s, err := cmd.Flags().GetString(v.name)
		if err != nil {
			continue
		}
		res = append(res, v.opt(s))
	}
	return res
}
