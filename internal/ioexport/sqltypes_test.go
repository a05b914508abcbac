package ioexport

import (
	"testing"
	"time"

	"github.com/gnames/gnstar/pkg/table"
	"github.com/stretchr/testify/assert"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"orders"`, quoteIdent("orders"))
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
	assert.Equal(t, `"order"`, quoteIdent("order"))
}

func TestCreateTable(t *testing.T) {
	cols := []string{"id", "price", "paid", "at", "note", "empty"}
	kinds := []table.Kind{
		table.KindInt, table.KindFloat, table.KindBool,
		table.KindTime, table.KindString, table.KindNull,
	}

	q := sqliteDialect.createTable("fact_order_lines", cols, kinds)
	assert.Equal(t,
		`CREATE TABLE "fact_order_lines" ("id" INTEGER, "price" REAL, `+
			`"paid" BOOLEAN, "at" TIMESTAMP, "note" TEXT, "empty" TEXT)`, q)

	q = postgresDialect.createTable("fact_order_lines", cols, kinds)
	assert.Equal(t,
		`CREATE TABLE "fact_order_lines" ("id" BIGINT, "price" DOUBLE PRECISION, `+
			`"paid" BOOLEAN, "at" TIMESTAMPTZ, "note" TEXT, "empty" TEXT)`, q)
}

func TestInsert(t *testing.T) {
	q := sqliteDialect.insert("t", []string{"a", "b"}, 2)
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES (?, ?), (?, ?)`, q)

	q = sqliteDialect.insert("t", []string{"a"}, 1)
	assert.Equal(t, `INSERT INTO "t" ("a") VALUES (?)`, q)
}

func TestCoerceRow(t *testing.T) {
	tbl := table.New("t", "qty", "price", "code", "at")
	ts := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	_ = tbl.Append(int64(2), int64(3), "x", ts)
	_ = tbl.Append(nil, 2.5, int64(7), nil)

	kinds := columnKinds(tbl)
	assert.Equal(t, []table.Kind{
		table.KindInt, table.KindFloat, table.KindString, table.KindTime,
	}, kinds)

	assert.Equal(t, []any{int64(2), 3.0, "x", ts}, coerceRow(tbl.Rows[0], kinds))
	assert.Equal(t, []any{nil, 2.5, "7", nil}, coerceRow(tbl.Rows[1], kinds))
}
