package staging

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gnstar/pkg/table"
)

// ErrNoDates is reported when not a single value of a date-like column
// could be parsed. Such columns are left as they are.
var ErrNoDates = errors.New("no parsable date values")

// dateColumns are recognized as dates regardless of suffix.
var dateColumns = []string{"order_date", "created_at", "fecha", "date"}

// CanonicalColumn trims, lower-cases a column label and replaces internal
// spaces with underscores.
func CanonicalColumn(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "_")
}

// CanonicalizeColumns returns a copy of t with canonical column labels.
// When two labels collapse into the same canonical label, later ones get
// a numeric suffix so labels stay unique. The operation is idempotent.
func CanonicalizeColumns(t *table.Table) *table.Table {
	res := t.Clone()
	seen := make(map[string]struct{}, len(res.Columns))
	for i, c := range res.Columns {
		name := CanonicalColumn(c)
		uniq := name
		for n := 2; ; n++ {
			if _, ok := seen[uniq]; !ok {
				break
			}
			uniq = fmt.Sprintf("%s_%d", name, n)
		}
		seen[uniq] = struct{}{}
		res.Columns[i] = uniq
	}
	return res
}

// IsDateColumn reports if a canonical column label denotes a date.
func IsDateColumn(col string) bool {
	if slices.Contains(dateColumns, col) {
		return true
	}
	return strings.HasSuffix(col, "_date") || strings.HasSuffix(col, "_at")
}

// DateParse is the outcome of parsing one date-like column.
type DateParse struct {
	// Column is the canonical column label.
	Column string

	// Parsed is the number of cells now holding a time value.
	Parsed int

	// Nulled is the number of non-null cells that could not be parsed
	// and were set to null.
	Nulled int

	// Err is set when the column was left unparsed.
	Err error
}

// ParseDates converts all date-like columns of t into time values.
// Cells that cannot be parsed become null. A column where no non-null
// value parses is left untouched and reported with Err. The returned table
// is a copy; t is not modified.
func ParseDates(t *table.Table) (*table.Table, []DateParse) {
	res := t.Clone()
	var reports []DateParse
	for idx, col := range res.Columns {
		if !IsDateColumn(col) {
			continue
		}
		rep := DateParse{Column: col}
		vals := make([]any, len(res.Rows))
		var nonNull int
		for i, row := range res.Rows {
			v := row[idx]
			if v == nil {
				continue
			}
			nonNull++
			if tm, ok := table.ParseTime(v); ok {
				vals[i] = tm
				rep.Parsed++
				continue
			}
			rep.Nulled++
		}

		if nonNull > 0 && rep.Parsed == 0 {
			rep.Nulled = 0
			rep.Err = fmt.Errorf("column %s: %w", col, ErrNoDates)
			reports = append(reports, rep)
			continue
		}

		for i, row := range res.Rows {
			row[idx] = vals[i]
		}
		reports = append(reports, rep)
	}
	return res, reports
}
