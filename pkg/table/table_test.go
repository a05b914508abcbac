package table_test

import (
	"testing"
	"time"

	"github.com/gnames/gnstar/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customers(t *testing.T) *table.Table {
	tbl := table.New("customers", "customer_id", "name")
	require.NoError(t, tbl.Append(int64(1), "A"))
	require.NoError(t, tbl.Append(int64(1), "A"))
	require.NoError(t, tbl.Append(int64(2), "B"))
	return tbl
}

func TestAppendWrongWidth(t *testing.T) {
	tbl := table.New("t", "a", "b")
	err := tbl.Append(1)
	assert.Error(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestNilTable(t *testing.T) {
	var tbl *table.Table
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Empty())
	assert.False(t, tbl.Has("a"))
	assert.Nil(t, tbl.Clone())
}

func TestSelect(t *testing.T) {
	tbl := customers(t)

	sel := tbl.Select("name", "missing", "customer_id")
	assert.Equal(t, []string{"name", "customer_id"}, sel.Columns)
	assert.Equal(t, []any{"A", int64(1)}, sel.Rows[0])

	assert.Equal(t, 3, sel.Len())

	// receiver is untouched
	assert.Equal(t, []string{"customer_id", "name"}, tbl.Columns)
}

func TestRename(t *testing.T) {
	tbl := table.New("stores", "channel_id", "name")
	require.NoError(t, tbl.Append("web", "Online"))

	assert.True(t, tbl.Rename("channel_id", "store_id"))
	assert.Equal(t, []string{"store_id", "name"}, tbl.Columns)
	assert.False(t, tbl.Rename("absent", "x"))

	// renaming onto an existing label replaces it
	assert.True(t, tbl.Rename("name", "store_id"))
	assert.Equal(t, []string{"store_id"}, tbl.Columns)
	assert.Equal(t, []any{"Online"}, tbl.Rows[0])
}

func TestInsertColumn(t *testing.T) {
	tbl := customers(t)
	tbl.InsertColumn(0, "customer_sk", []any{int64(1), int64(2), int64(3)})
	assert.Equal(t, []string{"customer_sk", "customer_id", "name"}, tbl.Columns)
	assert.Equal(t, int64(3), tbl.Value(2, "customer_sk"))

	tbl.AddColumn("flag", func(i int) any { return i%2 == 0 })
	assert.Equal(t, "flag", tbl.Columns[3])
	assert.Equal(t, false, tbl.Value(1, "flag"))
}

func TestDistinct(t *testing.T) {
	tbl := customers(t)
	res := tbl.Distinct()
	assert.Equal(t, 2, res.Len())
	assert.Equal(t, 3, tbl.Len())

	again := res.Distinct()
	assert.Equal(t, res.Rows, again.Rows)
}

func TestDistinctOn(t *testing.T) {
	tbl := table.New("customers", "customer_id", "name")
	require.NoError(t, tbl.Append(int64(1), "A"))
	require.NoError(t, tbl.Append(float64(1), "A changed"))
	require.NoError(t, tbl.Append("2", "B"))
	require.NoError(t, tbl.Append(nil, "C"))
	require.NoError(t, tbl.Append(nil, "D"))

	res := tbl.DistinctOn("customer_id")
	require.Equal(t, 3, res.Len())
	assert.Equal(t, "A", res.Value(0, "name"), "first occurrence wins")
	assert.Equal(t, "B", res.Value(1, "name"))
	assert.Equal(t, "C", res.Value(2, "name"))

	t.Run("missing key falls back to full row", func(t *testing.T) {
		res := customers(t).DistinctOn("absent")
		assert.Equal(t, 2, res.Len())
	})
}

func TestDistinctKeepsExactText(t *testing.T) {
	tbl := table.New("customers", "customer_id", "note")
	require.NoError(t, tbl.Append("007", "ok"))
	require.NoError(t, tbl.Append("7", "ok"))
	require.NoError(t, tbl.Append("7", "ok "))
	require.NoError(t, tbl.Append(int64(7), "ok"))
	require.NoError(t, tbl.Append(float64(7), "ok"))

	res := tbl.Distinct()
	require.Equal(t, 4, res.Len())
	assert.Equal(t, "007", res.Value(0, "customer_id"))
	assert.Equal(t, "7", res.Value(1, "customer_id"))
	assert.Equal(t, "ok ", res.Value(2, "note"))
	assert.Equal(t, int64(7), res.Value(3, "customer_id"))

	ids := tbl.DistinctOn("customer_id")
	assert.Equal(t, 3, ids.Len())

	assert.NotEqual(t,
		table.Fingerprint([]any{"A1"}),
		table.Fingerprint([]any{"A1 "}),
	)
	assert.Equal(t,
		table.Fingerprint([]any{int64(2)}),
		table.Fingerprint([]any{2.0}),
	)
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		msg string
		val any
		key string
		ok  bool
	}{
		{"int", int64(7), "7", true},
		{"integral float", float64(7), "7", true},
		{"fractional float", 7.5, "7.5", true},
		{"numeric string", " 7 ", "7", true},
		{"float string", "7.0", "7", true},
		{"text", "web", "web", true},
		{"null", nil, "", false},
		{"bool", true, "true", true},
		{
			"time",
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			"2024-01-05T00:00:00Z",
			true,
		},
	}

	for _, v := range tests {
		key, ok := table.KeyOf(v.val)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.key, key, v.msg)
	}
}

func TestLeftJoin(t *testing.T) {
	items := table.New("order_items", "order_id", "store_id")
	require.NoError(t, items.Append(int64(100), int64(1)))
	require.NoError(t, items.Append(int64(101), int64(99)))
	require.NoError(t, items.Append(int64(102), nil))

	stores := table.New("dim_stores", "store_sk", "store_id", "name")
	require.NoError(t, stores.Append(int64(1), "1", "Main"))
	require.NoError(t, stores.Append(int64(2), "1", "Duplicate key"))

	res, matched := items.LeftJoin(table.Join{
		Right:    stores,
		LeftKey:  "store_id",
		RightKey: "store_id",
		Columns:  []string{"store_sk"},
	})

	assert.Equal(t, 1, matched)
	require.Equal(t, 3, res.Len(), "left join never drops rows")
	assert.Equal(t, []string{"order_id", "store_id", "store_sk"}, res.Columns)
	assert.Equal(t, int64(1), res.Value(0, "store_sk"), "first right row wins")
	assert.Nil(t, res.Value(1, "store_sk"))
	assert.Nil(t, res.Value(2, "store_sk"))
}

func TestLeftJoinKeepsLeftColumns(t *testing.T) {
	items := table.New("order_items", "order_id", "customer_id")
	require.NoError(t, items.Append(int64(100), int64(5)))

	orders := table.New("orders", "order_id", "customer_id", "order_date")
	require.NoError(t, orders.Append(int64(100), int64(6), "2024-01-05"))

	res, _ := items.LeftJoin(table.Join{
		Right:    orders,
		LeftKey:  "order_id",
		RightKey: "order_id",
		Columns:  []string{"customer_id", "order_date"},
	})
	assert.Equal(t, int64(5), res.Value(0, "customer_id"))
	assert.Equal(t, "2024-01-05", res.Value(0, "order_date"))
}

func TestLeftJoinDays(t *testing.T) {
	orders := table.New("orders", "order_id", "order_date")
	require.NoError(t, orders.Append(int64(1), "2024-01-05 13:45:00"))
	require.NoError(t, orders.Append(int64(2), "not a date"))

	dates := table.New("dim_date", "date_sk", "date")
	require.NoError(t, dates.Append(int64(3),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))

	res, matched := orders.LeftJoin(table.Join{
		Right:        dates,
		LeftKey:      "order_date",
		RightKey:     "date",
		LeftKeyFunc:  table.DayKey,
		RightKeyFunc: table.DayKey,
		Columns:      []string{"date_sk"},
		As:           map[string]string{"date_sk": "order_date_sk"},
	})
	assert.Equal(t, 1, matched)
	assert.Equal(t, int64(3), res.Value(0, "order_date_sk"))
	assert.Nil(t, res.Value(1, "order_date_sk"))
	assert.False(t, res.Has("date_sk"))
}

func TestLeftJoinMissingKey(t *testing.T) {
	tbl := customers(t)
	other := table.New("other", "x")
	res, matched := tbl.LeftJoin(table.Join{
		Right: other, LeftKey: "customer_id", RightKey: "customer_id",
		Columns: []string{"x"},
	})
	assert.Equal(t, 0, matched)
	assert.Equal(t, tbl.Columns, res.Columns)
}
