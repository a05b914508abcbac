package table

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/gnuuid"
)

const nullKey = "\x00"

// KeyOf converts a cell into a join key. Numeric values are normalized
// so that int64(7), float64(7) and "7" produce the same key.
// The second return value is false for nulls and NaN, which never match
// anything in joins.
func KeyOf(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return floatKey(val)
	case bool:
		return strconv.FormatBool(val), true
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), true
	case string:
		s := strings.TrimSpace(val)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if k, ok := floatKey(f); ok {
				return k, true
			}
		}
		return s, true
	default:
		return FormatValue(val), true
	}
}

func floatKey(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'g', -1, 64), true
}

// exactKey converts a cell into a key that keeps its type and exact
// text. Only integers and floats of equal value share a key, so "7" and
// "007" differ, as do "ok" and "ok ".
func exactKey(v any) string {
	switch val := v.(type) {
	case nil:
		return nullKey
	case int64:
		return "n:" + strconv.FormatInt(val, 10)
	case int:
		return "n:" + strconv.Itoa(val)
	case float64:
		if math.IsNaN(val) {
			return nullKey
		}
		if k, ok := floatKey(val); ok {
			return "n:" + k
		}
		return "n:" + strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(val)
	case time.Time:
		return "t:" + val.UTC().Format(time.RFC3339Nano)
	case string:
		return "s:" + val
	default:
		return "x:" + FormatValue(val)
	}
}

// Fingerprint returns a deterministic identifier of a row's content.
// Rows share a fingerprint only when their cells are equal in type and
// value. Integers and floats of equal value are equal.
func Fingerprint(row []any) string {
	var sb strings.Builder
	for i, v := range row {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(exactKey(v))
	}
	return gnuuid.New(sb.String()).String()
}

// Distinct removes rows that duplicate an earlier row on every column.
// The first occurrence is kept and row order is preserved.
func (t *Table) Distinct() *Table {
	res := &Table{Name: t.Name, Columns: t.Columns}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		fp := Fingerprint(row)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		res.Rows = append(res.Rows, row)
	}
	return res.Clone()
}

// DistinctOn removes rows that repeat an earlier row's key columns.
// Nulls are treated as one key value, so only the first null-key row
// survives. Absent key columns make it behave like Distinct.
func (t *Table) DistinctOn(keys ...string) *Table {
	idxs := make([]int, 0, len(keys))
	for _, k := range keys {
		if i := t.Index(k); i >= 0 {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) == 0 {
		return t.Distinct()
	}

	res := &Table{Name: t.Name, Columns: t.Columns}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		parts := make([]any, len(idxs))
		for j, idx := range idxs {
			parts[j] = row[idx]
		}
		fp := Fingerprint(parts)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		res.Rows = append(res.Rows, row)
	}
	return res.Clone()
}

// KeyFunc turns a cell into a join key. The bool result is false when
// the cell cannot take part in a join.
type KeyFunc func(v any) (string, bool)

// Join describes a left join against Right.
type Join struct {
	// Right is the table providing additional columns.
	Right *Table

	// LeftKey and RightKey are the columns compared by the join.
	LeftKey  string
	RightKey string

	// LeftKeyFunc and RightKeyFunc normalize key cells. KeyOf is used
	// when they are nil.
	LeftKeyFunc  KeyFunc
	RightKeyFunc KeyFunc

	// Columns are the columns of Right attached to the result.
	Columns []string

	// As optionally renames attached columns.
	As map[string]string
}

// LeftJoin attaches columns of j.Right to every row of t. The right side
// is indexed by key and the first matching right row wins, so the result
// always has exactly t.Len() rows. Unmatched rows get nulls. Columns that
// already exist in t are not overwritten.
//
// It returns the joined table and the number of matched rows. When a key
// column is missing on either side, t is returned unchanged.
func (t *Table) LeftJoin(j Join) (*Table, int) {
	li := t.Index(j.LeftKey)
	ri := j.Right.Index(j.RightKey)
	if li < 0 || ri < 0 {
		return t.Clone(), 0
	}
	lkf, rkf := j.LeftKeyFunc, j.RightKeyFunc
	if lkf == nil {
		lkf = KeyOf
	}
	if rkf == nil {
		rkf = KeyOf
	}

	type attach struct {
		src  int
		name string
	}
	var atts []attach
	for _, c := range j.Columns {
		idx := j.Right.Index(c)
		if idx < 0 {
			continue
		}
		name := c
		if as, ok := j.As[c]; ok {
			name = as
		}
		if t.Has(name) {
			continue
		}
		atts = append(atts, attach{src: idx, name: name})
	}

	index := make(map[string][]any, j.Right.Len())
	for _, row := range j.Right.Rows {
		k, ok := rkf(row[ri])
		if !ok {
			continue
		}
		if _, exists := index[k]; !exists {
			index[k] = row
		}
	}

	res := t.Clone()
	for _, a := range atts {
		res.Columns = append(res.Columns, a.name)
	}
	var matched int
	for i, row := range res.Rows {
		var match []any
		if k, ok := lkf(row[li]); ok {
			match = index[k]
		}
		if match != nil {
			matched++
		}
		for _, a := range atts {
			var v any
			if match != nil {
				v = match[a.src]
			}
			row = append(row, v)
		}
		res.Rows[i] = row
	}
	return res, matched
}
