// Package ioreport records what a stage wrote. It saves a run manifest
// next to the written tables and renders a summary for the console.
package ioreport

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnstar/internal/iotable"
	app "github.com/gnames/gnstar/pkg"
	"github.com/gnames/gnstar/pkg/config"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Status of a table in a run.
type Status string

const (
	// Written means the table was saved in its primary format.
	Written Status = "written"
	// Fallback means the table was saved as CSV after Parquet failed.
	Fallback Status = "fallback"
	// Skipped means there was nothing to write.
	Skipped Status = "skipped"
	// Failed means the table is absent from this run.
	Failed Status = "failed"
)

// Entry describes one table of a run.
type Entry struct {
	Table    string   `yaml:"table"`
	Source   string   `yaml:"source,omitempty"`
	File     string   `yaml:"file,omitempty"`
	Format   string   `yaml:"format,omitempty"`
	Rows     int      `yaml:"rows"`
	Status   Status   `yaml:"status"`
	Fallback string   `yaml:"fallback,omitempty"`
	Error    string   `yaml:"error,omitempty"`
	Missing  []string `yaml:"missing_columns,omitempty"`
	Notes    []string `yaml:"notes,omitempty"`
}

// Manifest is the record of one stage run.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	Stage     string    `yaml:"stage"`
	Version   string    `yaml:"version"`
	StartedAt time.Time `yaml:"started_at"`
	Duration  string    `yaml:"duration"`
	Tables    []*Entry  `yaml:"tables"`
}

// New starts a manifest for the given stage.
func New(stage string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Stage:     stage,
		Version:   app.Version,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Add records and logs the outcome of a table write. It returns the new
// entry so the caller can attach notes.
func (m *Manifest) Add(source string, res iotable.WriteResult) *Entry {
	logWrite(source, res)

	e := &Entry{
		Table:  res.Name,
		Source: source,
		Rows:   res.Rows,
		Format: string(res.Format),
	}
	if res.Path != "" {
		e.File = filepath.Base(res.Path)
	}
	switch {
	case res.Skipped:
		e.Status, e.Rows = Skipped, 0
	case res.Err != nil:
		e.Status = Failed
		e.Error = res.Err.Error()
	case res.Fallback != nil:
		e.Status = Fallback
	default:
		e.Status = Written
	}
	if res.Fallback != nil {
		e.Fallback = res.Fallback.Error()
	}
	m.Tables = append(m.Tables, e)
	return e
}

// Count returns the number of tables with the given status.
func (m *Manifest) Count(s Status) int {
	var res int
	for _, e := range m.Tables {
		if e.Status == s {
			res++
		}
	}
	return res
}

// Finish sets the duration of the run.
func (m *Manifest) Finish(start time.Time) {
	m.Duration = gnfmt.TimeString(time.Since(start).Seconds())
}

// Write saves the manifest as YAML in dir.
func Write(dir string, m *Manifest) error {
	path := filepath.Join(dir, config.ManifestFile)
	data, err := yaml.Marshal(m)
	if err != nil {
		return ManifestWriteError(path, err)
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return ManifestWriteError(path, err)
	}
	return nil
}

// Read loads a manifest saved by Write.
func Read(dir string) (*Manifest, error) {
	path := filepath.Join(dir, config.ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ManifestReadError(path, err)
	}
	var res Manifest
	if err = yaml.Unmarshal(data, &res); err != nil {
		return nil, ManifestReadError(path, err)
	}
	return &res, nil
}

func logWrite(source string, res iotable.WriteResult) {
	switch {
	case res.Skipped:
		slog.Info("Table not written",
			"table", res.Name, "source", source)
	case res.Err != nil:
		slog.Error("Cannot write table", "table", res.Name, "error", res.Err)
		gn.PrintErrorMessage(res.Err)
	case res.Fallback != nil:
		slog.Warn("Table written as CSV",
			"table", res.Name,
			"path", res.Path,
			"rows", res.Rows,
			"reason", res.Fallback,
		)
		gn.Message("<em>%s</em>: %s rows (CSV fallback)",
			res.Name, humanize.Comma(int64(res.Rows)))
	default:
		slog.Info("Table written",
			"table", res.Name, "path", res.Path, "rows", res.Rows)
		gn.Message("<em>%s</em>: %s rows",
			res.Name, humanize.Comma(int64(res.Rows)))
	}
}
