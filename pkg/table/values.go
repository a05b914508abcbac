package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimeLayout is used when time values are written as text.
const TimeLayout = "2006-01-02 15:04:05"

// FormatValue renders a cell as text. Nulls become an empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 &&
			val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(TimeLayout)
	default:
		return fmt.Sprint(val)
	}
}

// ToFloat converts numeric cells and numeric strings into float64.
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseTime converts a cell into a time.Time. Strings are parsed with a
// permissive parser in UTC, integers are read as YYYYMMDD when they look
// like one. Anything else is not a time.
func ParseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case int64:
		return compactDate(val)
	case float64:
		if val != math.Trunc(val) {
			return time.Time{}, false
		}
		return compactDate(int64(val))
	default:
		return time.Time{}, false
	}
}

func compactDate(i int64) (time.Time, bool) {
	if i < 10000101 || i > 99991231 {
		return time.Time{}, false
	}
	y, m, d := int(i/10000), time.Month(i/100%100), int(i%100)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// Day truncates a time to its calendar day in its own location,
// returned as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey is a KeyFunc that joins on calendar days.
func DayKey(v any) (string, bool) {
	t, ok := ParseTime(v)
	if !ok {
		return "", false
	}
	return Day(t).Format(time.DateOnly), true
}
