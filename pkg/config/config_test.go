package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gnstar/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gnstar"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gnstar", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gnstar", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		// Pipeline defaults
		assert.Equal(t, "raw", cfg.Dirs.Raw)
		assert.Equal(t, "warehouse/staging", cfg.Dirs.Staging)
		assert.Equal(t, "warehouse", cfg.Dirs.Warehouse)
		assert.Equal(t, "parquet", cfg.Output.Format)
		assert.Equal(t, "snappy", cfg.Output.Compression)

		// Database defaults
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "postgres", cfg.Database.Password)
		assert.Equal(t, "warehouse", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 10_000, cfg.Database.BatchSize)

		// Export defaults
		assert.Equal(t, "sqlite", cfg.Export.Target)
		assert.NotEmpty(t, cfg.Export.SQLitePath)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		// JobsNumber defaults to CPU count
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestOptionDirs(t *testing.T) {
	tests := []struct {
		name  string
		opt   config.Option
		field func(*config.Config) string
		res   string
	}{
		{
			name:  "raw dir",
			opt:   config.OptDirsRaw(" /data/raw "),
			field: func(c *config.Config) string { return c.Dirs.Raw },
			res:   "/data/raw",
		},
		{
			name:  "staging dir",
			opt:   config.OptDirsStaging("/tmp/stg"),
			field: func(c *config.Config) string { return c.Dirs.Staging },
			res:   "/tmp/stg",
		},
		{
			name:  "warehouse dir",
			opt:   config.OptDirsWarehouse("/tmp/dw"),
			field: func(c *config.Config) string { return c.Dirs.Warehouse },
			res:   "/tmp/dw",
		},
		{
			name:  "empty raw dir is ignored",
			opt:   config.OptDirsRaw("  "),
			field: func(c *config.Config) string { return c.Dirs.Raw },
			res:   "raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt})
			assert.Equal(t, tt.res, tt.field(cfg))
		})
	}
}

func TestOptionOutput(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		compression string
		resFormat   string
		resCompr    string
	}{
		{
			name:        "csv and gzip",
			format:      "CSV",
			compression: "gzip",
			resFormat:   "csv",
			resCompr:    "gzip",
		},
		{
			name:        "unknown values keep defaults",
			format:      "xlsx",
			compression: "lzma",
			resFormat:   "parquet",
			resCompr:    "snappy",
		},
		{
			name:        "no compression",
			format:      " parquet ",
			compression: "none",
			resFormat:   "parquet",
			resCompr:    "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{
				config.OptOutputFormat(tt.format),
				config.OptOutputCompression(tt.compression),
			})
			assert.Equal(t, tt.resFormat, cfg.Output.Format)
			assert.Equal(t, tt.resCompr, cfg.Output.Compression)
		})
	}
}

func TestOptionExport(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptExportTarget("Postgres"),
		config.OptExportSQLitePath("/tmp/dw.sqlite"),
	})
	assert.Equal(t, "postgres", cfg.Export.Target)
	assert.Equal(t, "/tmp/dw.sqlite", cfg.Export.SQLitePath)

	cfg.Update([]config.Option{config.OptExportTarget("oracle")})
	assert.Equal(t, "postgres", cfg.Export.Target,
		"unsupported target is ignored")
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid host",
			input:    "db.example.com",
			expected: "db.example.com",
		},
		{
			name:     "trims whitespace",
			input:    "  db.example.com  ",
			expected: "db.example.com",
		},
		{
			name:     "ignores empty string",
			input:    "",
			expected: "localhost", // Should keep default
		},
		{
			name:     "ignores whitespace-only",
			input:    "   ",
			expected: "localhost", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptDatabaseHost(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionDatabasePort(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{
			name:     "sets valid port",
			input:    3306,
			expected: 3306,
		},
		{
			name:     "ignores zero",
			input:    0,
			expected: 5432,
		},
		{
			name:     "ignores negative",
			input:    -100,
			expected: 5432,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptDatabasePort(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Database.Port)
		})
	}
}

func TestOptionDatabaseSSLMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"require", "require", "require"},
		{"upper case", "VERIFY-FULL", "verify-full"},
		{"invalid", "sometimes", "disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseSSLMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.SSLMode)
		})
	}
}

func TestOptionLog(t *testing.T) {
	tests := []struct {
		name   string
		opt    config.Option
		field  func(*config.Config) string
		expect string
	}{
		{
			name:   "debug level",
			opt:    config.OptLogLevel("DEBUG"),
			field:  func(c *config.Config) string { return c.Log.Level },
			expect: "debug",
		},
		{
			name:   "invalid level",
			opt:    config.OptLogLevel("verbose"),
			field:  func(c *config.Config) string { return c.Log.Level },
			expect: "info",
		},
		{
			name:   "tint format",
			opt:    config.OptLogFormat("tint"),
			field:  func(c *config.Config) string { return c.Log.Format },
			expect: "tint",
		},
		{
			name:   "stderr destination",
			opt:    config.OptLogDestination("stderr"),
			field:  func(c *config.Config) string { return c.Log.Destination },
			expect: "stderr",
		},
		{
			name:   "invalid destination",
			opt:    config.OptLogDestination("syslog"),
			field:  func(c *config.Config) string { return c.Log.Destination },
			expect: "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt})
			assert.Equal(t, tt.expect, tt.field(cfg))
		})
	}
}

func TestOptionBatchSizeAndJobs(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseBatchSize(500),
		config.OptJobsNumber(3),
	})
	assert.Equal(t, 500, cfg.Database.BatchSize)
	assert.Equal(t, 3, cfg.JobsNumber)

	cfg.Update([]config.Option{
		config.OptDatabaseBatchSize(0),
		config.OptJobsNumber(-1),
	})
	assert.Equal(t, 500, cfg.Database.BatchSize)
	assert.Equal(t, 3, cfg.JobsNumber)
}

func TestMultipleOptions(t *testing.T) {
	t.Run("later options override earlier ones", func(t *testing.T) {
		cfg := config.New()

		opts := []config.Option{
			config.OptDirsRaw("first"),
			config.OptDirsRaw("second"),
		}

		cfg.Update(opts)

		assert.Equal(t, "second", cfg.Dirs.Raw)
		// Unchanged fields keep defaults
		assert.Equal(t, "warehouse", cfg.Dirs.Warehouse)
	})
}

func TestToOptions(t *testing.T) {
	t.Run("converts config to options correctly", func(t *testing.T) {
		original := config.New()
		opts := []config.Option{
			config.OptDirsRaw("/in"),
			config.OptDirsStaging("/stg"),
			config.OptDirsWarehouse("/dw"),
			config.OptOutputFormat("csv"),
			config.OptOutputCompression("zstd"),
			config.OptDatabaseHost("test.host.com"),
			config.OptDatabasePort(3306),
			config.OptDatabaseUser("testuser"),
			config.OptDatabasePassword("testpass"),
			config.OptDatabaseDatabase("testdb"),
			config.OptDatabaseSSLMode("require"),
			config.OptDatabaseBatchSize(1000),
			config.OptExportTarget("postgres"),
			config.OptExportSQLitePath("/dw/x.sqlite"),
			config.OptLogLevel("debug"),
			config.OptLogFormat("text"),
			config.OptLogDestination("stdout"),
			config.OptJobsNumber(8),
		}
		original.Update(opts)

		newCfg := config.New()
		newCfg.Update(original.ToOptions())

		assert.Equal(t, original.Dirs, newCfg.Dirs)
		assert.Equal(t, original.Output, newCfg.Output)
		assert.Equal(t, original.Database, newCfg.Database)
		assert.Equal(t, original.Export, newCfg.Export)
		assert.Equal(t, original.Log, newCfg.Log)
		assert.Equal(t, original.JobsNumber, newCfg.JobsNumber)
	})

	t.Run("excludes runtime-only fields", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptHomeDir("/custom/home"),
		})

		newCfg := config.New()
		newCfg.Update(cfg.ToOptions())

		assert.Equal(t, "", newCfg.HomeDir)
	})
}
