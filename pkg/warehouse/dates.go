package warehouse

import (
	"slices"
	"time"

	"github.com/gnames/gnstar/pkg/table"
)

// DateSource tells which input the date dimension was derived from.
type DateSource int

const (
	// DateNone means no input produced a single date.
	DateNone DateSource = iota
	// DateFromOrders uses distinct order dates.
	DateFromOrders
	// DateFromCustomers uses distinct customer creation dates.
	DateFromCustomers
	// DateFromRange is a daily calendar between the first and last order
	// date.
	DateFromRange
)

func (d DateSource) String() string {
	switch d {
	case DateFromOrders:
		return "orders.order_date"
	case DateFromCustomers:
		return "customers.created_at"
	case DateFromRange:
		return "generated range"
	default:
		return "none"
	}
}

// DateColumns are the columns of dim_date.
var DateColumns = []string{
	"date_sk", "date", "date_id", "year", "month", "day", "weekday",
}

// BuildDateDim derives dim_date. The first source that yields dates wins:
// distinct days of orders.order_date, then distinct days of
// customers.created_at, then every day between the minimum and maximum
// order date. The result has one row per day sorted ascending. It is nil
// when no source yields a date.
func BuildDateDim(orders, customers *table.Table) (*table.Table, DateSource) {
	if days := distinctDays(orders, "order_date"); len(days) > 0 {
		return dateTable(days), DateFromOrders
	}
	if days := distinctDays(customers, "created_at"); len(days) > 0 {
		return dateTable(days), DateFromCustomers
	}
	if days := dayRange(orders, "order_date"); len(days) > 0 {
		return dateTable(days), DateFromRange
	}
	return nil, DateNone
}

// DateID encodes a day as a YYYYMMDD integer.
func DateID(t time.Time) int64 {
	y, m, d := t.Date()
	return int64(y*10000 + int(m)*100 + d)
}

// Weekday returns the day of week with Monday as 0 and Sunday as 6.
func Weekday(t time.Time) int64 {
	return int64((t.Weekday() + 6) % 7)
}

func parsedDays(t *table.Table, col string) []time.Time {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	var res []time.Time
	for _, row := range t.Rows {
		if tm, ok := table.ParseTime(row[idx]); ok {
			res = append(res, table.Day(tm))
		}
	}
	return res
}

func distinctDays(t *table.Table, col string) []time.Time {
	days := parsedDays(t, col)
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })
}

func dayRange(t *table.Table, col string) []time.Time {
	days := parsedDays(t, col)
	if len(days) == 0 {
		return nil
	}
	lo, hi := slices.MinFunc(days, time.Time.Compare),
		slices.MaxFunc(days, time.Time.Compare)
	var res []time.Time
	for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
		res = append(res, d)
	}
	return res
}

func dateTable(days []time.Time) *table.Table {
	res := table.New(DimDate, DateColumns...)
	res.Rows = make([][]any, len(days))
	for i, d := range days {
		res.Rows[i] = []any{
			int64(i + 1),
			d,
			DateID(d),
			int64(d.Year()),
			int64(d.Month()),
			int64(d.Day()),
			Weekday(d),
		}
	}
	return res
}
