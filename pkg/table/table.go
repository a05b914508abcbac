// Package table provides the in-memory tabular dataset used by every stage
// of the pipeline. A Table is a named list of columns and rows of cells.
//
// Cells hold one of: nil (null), int64, float64, bool, string, time.Time.
// Readers are responsible for converting their native types into this set.
//
// Tables are treated as values: operations return new tables and never
// mutate the receiver unless the method name says so (Rename, AddColumn,
// InsertColumn).
package table

import (
	"fmt"
	"slices"
)

// Table is a named, in-memory tabular dataset.
type Table struct {
	// Name is the logical name of the table (canonical entity name,
	// dimension or fact name).
	Name string

	// Columns are column labels in their physical order.
	Columns []string

	// Rows contains one slice per row, each with len(Columns) cells.
	Rows [][]any
}

// New creates an empty table with the given columns.
func New(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: slices.Clone(columns)}
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty is true for nil tables and tables without rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Index returns the position of a column, or -1 if the column is absent.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	return slices.Index(t.Columns, col)
}

// Has reports if the table contains the column.
func (t *Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// FirstOf returns the first column from candidates that exists in the
// table, or an empty string.
func (t *Table) FirstOf(candidates ...string) string {
	for _, c := range candidates {
		if t.Has(c) {
			return c
		}
	}
	return ""
}

// Append adds a row. The row must have as many cells as there are columns.
func (t *Table) Append(row ...any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d cells, want %d",
			t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Value returns the cell of row i in column col, or nil if the column
// is absent.
func (t *Table) Value(i int, col string) any {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	return t.Rows[i][idx]
}

// Column returns a copy of all values of a column, or nil if the column
// is absent.
func (t *Table) Column(col string) []any {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	res := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		res[i] = row[idx]
	}
	return res
}

// Clone returns a deep copy of the table structure. Cell values are
// immutable, so they are shared.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	res := &Table{
		Name:    t.Name,
		Columns: slices.Clone(t.Columns),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		res.Rows[i] = slices.Clone(row)
	}
	return res
}

// Rename changes a column label in place. It does nothing if the old
// column is absent. Returns true if the column was renamed.
func (t *Table) Rename(from, to string) bool {
	idx := t.Index(from)
	if idx < 0 || from == to {
		return false
	}
	if other := t.Index(to); other >= 0 {
		// target exists already, drop it to keep labels unique
		t.dropIndex(other)
		idx = t.Index(from)
	}
	t.Columns[idx] = to
	return true
}

// SetColumn replaces values of an existing column or appends a new one.
// The vals slice must have one value per row.
func (t *Table) SetColumn(col string, vals []any) {
	idx := t.Index(col)
	if idx < 0 {
		t.InsertColumn(len(t.Columns), col, vals)
		return
	}
	for i := range t.Rows {
		t.Rows[i][idx] = vals[i]
	}
}

// AddColumn appends a column filled by fn for each row.
func (t *Table) AddColumn(col string, fn func(i int) any) {
	vals := make([]any, len(t.Rows))
	for i := range t.Rows {
		vals[i] = fn(i)
	}
	t.SetColumn(col, vals)
}

// InsertColumn inserts a column at position pos.
func (t *Table) InsertColumn(pos int, col string, vals []any) {
	if idx := t.Index(col); idx >= 0 {
		t.dropIndex(idx)
		if idx < pos {
			pos--
		}
	}
	pos = max(0, min(pos, len(t.Columns)))
	t.Columns = slices.Insert(t.Columns, pos, col)
	for i := range t.Rows {
		t.Rows[i] = slices.Insert(t.Rows[i], pos, vals[i])
	}
}

// Select returns a new table with only the given columns, in the given
// order. Absent columns are skipped.
func (t *Table) Select(cols ...string) *Table {
	var idxs []int
	res := &Table{Name: t.Name}
	for _, c := range cols {
		if i := t.Index(c); i >= 0 && !slices.Contains(res.Columns, c) {
			idxs = append(idxs, i)
			res.Columns = append(res.Columns, c)
		}
	}
	res.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]any, len(idxs))
		for j, idx := range idxs {
			r[j] = row[idx]
		}
		res.Rows[i] = r
	}
	return res
}

func (t *Table) dropIndex(idx int) {
	t.Columns = slices.Delete(t.Columns, idx, idx+1)
	for i := range t.Rows {
		t.Rows[i] = slices.Delete(t.Rows[i], idx, idx+1)
	}
}
