package iobuild

import (
	"log/slog"

	"github.com/gnames/gn"
	"github.com/gnames/gnstar/internal/iotable"
	"github.com/gnames/gnstar/pkg/table"
)

// stagingTables reads staging tables on demand. Every table is read at
// most once per build.
type stagingTables struct {
	dir   string
	cache map[string]*table.Table
}

func newStagingTables(dir string) *stagingTables {
	return &stagingTables{dir: dir, cache: make(map[string]*table.Table)}
}

// get returns a staging table or nil when it is absent or unreadable.
func (s *stagingTables) get(name string) *table.Table {
	if t, ok := s.cache[name]; ok {
		return t
	}
	t, err := iotable.ReadNamed(s.dir, name)
	switch {
	case iotable.IsNotFound(err):
		slog.Debug("Staging table not found", "table", name, "dir", s.dir)
	case err != nil:
		slog.Warn("Cannot read staging table", "table", name, "error", err)
		gn.Warn("Cannot read staging table <em>%s</em>, ignoring it", name)
	}
	s.cache[name] = t
	return t
}

// first returns the first available table of names and its name.
func (s *stagingTables) first(names ...string) (*table.Table, string) {
	for _, name := range names {
		if t := s.get(name); t != nil {
			return t, name
		}
	}
	return nil, ""
}
