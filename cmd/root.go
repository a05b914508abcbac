/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnstar/internal/iofs"
	"github.com/gnames/gnstar/internal/iologger"
	app "github.com/gnames/gnstar/pkg"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir  string
	opts     []config.Option
	cfg      *config.Config
	closeLog = func() {}
)

// getRootCmd returns the base command with all subcommands attached.
// Extracted as a function to facilitate testing.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnstar",
		Short:   "GNstar builds a star-schema warehouse from raw extracts",
		Long: `GNstar turns raw tabular extracts into a star-schema warehouse.

The pipeline has two stages and an optional export:
  - stage:  normalize raw files into one staging table per entity
  - build:  assemble dimensions with surrogate keys and fact tables
  - run:    stage and build in one go
  - export: load warehouse tables into SQLite or PostgreSQL

Tables are written as Parquet files. When a Parquet file cannot be
written the table is saved as CSV instead.

Configuration precedence (highest to lowest):
  1. CLI flags (--raw-dir, --format, etc.)
  2. Environment variables (GNSTAR_*)
  3. Config file (~/.config/gnstar/config.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (dirs.raw → GNSTAR_DIRS_RAW).

  Examples:
    GNSTAR_DIRS_RAW               raw extracts directory
    GNSTAR_DIRS_WAREHOUSE         warehouse directory
    GNSTAR_OUTPUT_FORMAT          parquet or csv
    GNSTAR_EXPORT_TARGET          sqlite or postgres
    GNSTAR_DATABASE_HOST          PostgreSQL host
    GNSTAR_LOG_LEVEL              debug, info, warn, error`,
		PersistentPreRunE: bootstrap,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			closeLog()
		},
		RunE:          runRoot,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "gnstar version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gnstar")

	dirFlags(rootCmd)

	rootCmd.AddCommand(
		getStageCmd(),
		getBuildCmd(),
		getRunCmd(),
		getExportCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	closeLog, err = iologger.Init(config.LogDir(homeDir), defaultLog, false)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// CLI flags win over config file and environment
	cfg.Update(flagOptions(cmd))

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"raw", cfg.Dirs.Raw,
		"staging", cfg.Dirs.Staging,
		"warehouse", cfg.Dirs.Warehouse,
		"format", cfg.Output.Format,
	)

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
// The log file is appended to so that bootstrap records are kept.
func reconfigureLogging(cfg *config.Config) error {
	closeLog()
	logDir := config.LogDir(cfg.HomeDir)
	var err error
	closeLog, err = iologger.Init(logDir, cfg.Log, true)
	return err
}

func runRoot(cmd *cobra.Command, _ []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := getRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("GNSTAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Pipeline directories
	v.BindEnv("dirs.raw", "GNSTAR_DIRS_RAW")
	v.BindEnv("dirs.staging", "GNSTAR_DIRS_STAGING")
	v.BindEnv("dirs.warehouse", "GNSTAR_DIRS_WAREHOUSE")

	// Output files
	v.BindEnv("output.format", "GNSTAR_OUTPUT_FORMAT")
	v.BindEnv("output.compression", "GNSTAR_OUTPUT_COMPRESSION")

	// Database configuration
	v.BindEnv("database.host", "GNSTAR_DATABASE_HOST")
	v.BindEnv("database.port", "GNSTAR_DATABASE_PORT")
	v.BindEnv("database.user", "GNSTAR_DATABASE_USER")
	v.BindEnv("database.password", "GNSTAR_DATABASE_PASSWORD")
	v.BindEnv("database.database", "GNSTAR_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "GNSTAR_DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "GNSTAR_DATABASE_BATCH_SIZE")

	// Export
	v.BindEnv("export.target", "GNSTAR_EXPORT_TARGET")
	v.BindEnv("export.sqlite_path", "GNSTAR_EXPORT_SQLITE_PATH")

	// Log configuration
	v.BindEnv("log.level", "GNSTAR_LOG_LEVEL")
	v.BindEnv("log.format", "GNSTAR_LOG_FORMAT")
	v.BindEnv("log.destination", "GNSTAR_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "GNSTAR_JOBS_NUMBER")

	v.AutomaticEnv()
}
