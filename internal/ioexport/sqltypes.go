package ioexport

import (
	"fmt"
	"strings"

	"github.com/gnames/gnstar/pkg/table"
)

// dialect maps column kinds to SQL types of one database.
type dialect struct {
	types map[table.Kind]string
	quote func(string) string
}

var sqliteDialect = dialect{
	types: map[table.Kind]string{
		table.KindInt:    "INTEGER",
		table.KindFloat:  "REAL",
		table.KindBool:   "BOOLEAN",
		table.KindTime:   "TIMESTAMP",
		table.KindString: "TEXT",
		table.KindNull:   "TEXT",
	},
	quote: quoteIdent,
}

var postgresDialect = dialect{
	types: map[table.Kind]string{
		table.KindInt:    "BIGINT",
		table.KindFloat:  "DOUBLE PRECISION",
		table.KindBool:   "BOOLEAN",
		table.KindTime:   "TIMESTAMPTZ",
		table.KindString: "TEXT",
		table.KindNull:   "TEXT",
	},
	quote: quoteIdent,
}

// quoteIdent quotes an SQL identifier with double quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// columnKinds infers the kind of every column of t.
func columnKinds(t *table.Table) []table.Kind {
	res := make([]table.Kind, len(t.Columns))
	for i := range t.Columns {
		res[i] = t.ColumnKind(i)
	}
	return res
}

func (d dialect) dropTable(name string) string {
	return "DROP TABLE IF EXISTS " + d.quote(name)
}

func (d dialect) createTable(name string, cols []string, kinds []table.Kind) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = d.quote(c) + " " + d.types[kinds[i]]
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)",
		d.quote(name), strings.Join(defs, ", "))
}

// insert builds a multi-row INSERT statement with positional
// placeholders.
func (d dialect) insert(name string, cols []string, rows int) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.quote(c)
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	values := strings.TrimSuffix(strings.Repeat(row+", ", rows), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.quote(name), strings.Join(quoted, ", "), values)
}

// coerceRow converts the cells of a row to the kinds of their columns.
func coerceRow(row []any, kinds []table.Kind) []any {
	res := make([]any, len(row))
	for i, v := range row {
		res[i] = table.Coerce(kinds[i], v)
	}
	return res
}
