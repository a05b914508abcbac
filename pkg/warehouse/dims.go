package warehouse

import (
	"github.com/gnames/gnstar/pkg/table"
)

// Dims holds built dimensions by name. Missing dimensions are absent
// from the map.
type Dims map[string]*table.Table

// Get returns a dimension or nil.
func (d Dims) Get(name string) *table.Table {
	if d == nil {
		return nil
	}
	return d[name]
}

// BuildDim builds a dimension from its staging table. The natural key is
// resolved through aliases, created_at values are coerced to times, rows
// are deduplicated on the natural key (on the whole row when no key is
// present) and a dense surrogate key starting at 1 is inserted as the
// first column.
//
// A nil or empty source produces nil.
func BuildDim(spec DimSpec, src *table.Table) *table.Table {
	if src.Empty() {
		return nil
	}
	d := src.Clone()
	d.Name = spec.Name

	if !d.Has(spec.NaturalKey) {
		if alias := d.FirstOf(spec.Aliases...); alias != "" {
			d.Rename(alias, spec.NaturalKey)
		}
	}

	coerceTimes(d, "created_at")

	if d.Has(spec.NaturalKey) {
		d = d.DistinctOn(spec.NaturalKey)
	} else {
		d = d.Distinct()
	}

	AddSurrogateKey(d, spec.SK)
	return d
}

// AddSurrogateKey inserts a dense integer key 1..N as the first column,
// following the current row order.
func AddSurrogateKey(t *table.Table, sk string) {
	vals := make([]any, t.Len())
	for i := range vals {
		vals[i] = int64(i + 1)
	}
	t.InsertColumn(0, sk, vals)
}

// coerceTimes converts a column in place into time values. Cells that do
// not parse become null.
func coerceTimes(t *table.Table, col string) {
	idx := t.Index(col)
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		if tm, ok := table.ParseTime(row[idx]); ok {
			row[idx] = tm
		} else {
			row[idx] = nil
		}
	}
}
