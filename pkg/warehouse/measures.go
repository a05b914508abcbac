package warehouse

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gnames/gnstar/pkg/table"
)

var (
	quantityColumns = []string{"quantity", "qty", "units"}
	priceColumns    = []string{"price", "unit_price", "unitprice", "precio"}
)

// firstLike returns the first column of t, in physical order, whose label
// is one of names.
func firstLike(t *table.Table, names []string) string {
	for _, c := range t.Columns {
		if slices.Contains(names, c) {
			return c
		}
	}
	return ""
}

// LineTotal multiplies quantity by unit price in decimal arithmetic so
// that 3 x 0.1 gives 0.3. The result is false when either value is not
// numeric.
func LineTotal(qty, price any) (float64, bool) {
	q, ok := toDecimal(qty)
	if !ok {
		return 0, false
	}
	p, ok := toDecimal(price)
	if !ok {
		return 0, false
	}
	res, _ := q.Mul(p).Float64()
	return res, true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case int64:
		return decimal.NewFromInt(val), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	}
	f, ok := table.ToFloat(v)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// addMeasures sets quantity, unit_price and line_total on an order-line
// table. Quantity defaults to 1 when no quantity-like column exists. Unit
// price is taken from the first price-like column; without one the line
// total is null.
func addMeasures(t *table.Table) {
	qtyCol := firstLike(t, quantityColumns)
	priceCol := firstLike(t, priceColumns)

	qty := make([]any, t.Len())
	for i := range qty {
		qty[i] = int64(1)
		if qtyCol != "" {
			qty[i] = t.Value(i, qtyCol)
		}
	}

	var price []any
	if priceCol != "" {
		price = t.Column(priceCol)
	}

	total := make([]any, t.Len())
	for i := range total {
		if price == nil {
			continue
		}
		if lt, ok := LineTotal(qty[i], price[i]); ok {
			total[i] = lt
		}
	}

	t.SetColumn("quantity", qty)
	if price != nil {
		t.SetColumn("unit_price", price)
	}
	t.SetColumn("line_total", total)
}
