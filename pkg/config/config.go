// Package config provides configuration management for gnstar.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Dirs: raw, staging, warehouse
//   - Output: format, compression
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Export: target, sqlite_path
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNSTAR_ prefix with underscores for nesting:
//
//	GNSTAR_DIRS_RAW=./raw
//	GNSTAR_OUTPUT_FORMAT=parquet
//	GNSTAR_DATABASE_HOST=localhost
//	GNSTAR_LOG_LEVEL=info
//	GNSTAR_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete gnstar configuration.
type Config struct {
	// Dirs are the locations of raw input, staging and warehouse tables.
	Dirs DirsConfig `mapstructure:"dirs" yaml:"dirs"`

	// Output controls the file format of written tables.
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Database contains PostgreSQL connection settings used by export.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Export contains settings of the export command.
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber limits how many tables are exported concurrently.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DirsConfig contains the pipeline directories.
type DirsConfig struct {
	// Raw is the directory with raw extracts (*.parquet, *.csv).
	Raw string `mapstructure:"raw" yaml:"raw"`

	// Staging receives one normalized table per canonical entity.
	Staging string `mapstructure:"staging" yaml:"staging"`

	// Warehouse receives dimension and fact tables.
	Warehouse string `mapstructure:"warehouse" yaml:"warehouse"`
}

// OutputConfig describes how tables are written.
type OutputConfig struct {
	// Format is the primary format: "parquet" or "csv". With "parquet"
	// a failed write falls back to CSV.
	Format string `mapstructure:"format" yaml:"format"`

	// Compression codec of Parquet files.
	// Valid values: "snappy", "gzip", "zstd", "none".
	Compression string `mapstructure:"compression" yaml:"compression"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of rows sent per bulk insert.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ExportConfig contains settings of the export command.
type ExportConfig struct {
	// Target is "sqlite" or "postgres".
	Target string `mapstructure:"target" yaml:"target"`

	// SQLitePath is the database file created by the sqlite target.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Dirs: DirsConfig{
			Raw:       "raw",
			Staging:   "warehouse/staging",
			Warehouse: "warehouse",
		},
		Output: OutputConfig{
			Format:      "parquet",
			Compression: "snappy",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "warehouse",
			SSLMode:   "disable",
			BatchSize: 10_000,
		},
		Export: ExportConfig{
			Target:     "sqlite",
			SQLitePath: "warehouse/warehouse.sqlite",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
