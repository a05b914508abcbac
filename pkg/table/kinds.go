package table

import "time"

// Kind is the storage type of a column.
type Kind int

const (
	// KindNull is a column without a single non-null value.
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindString
)

// KindOf returns the kind of a single cell.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case int64, int:
		return KindInt
	case float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	default:
		return KindString
	}
}

// MergeKinds returns a kind able to hold values of both a and b. Integers
// and floats widen to floats, any other mix becomes a string.
func MergeKinds(a, b Kind) Kind {
	switch {
	case a == KindNull:
		return b
	case b == KindNull, a == b:
		return a
	case (a == KindInt && b == KindFloat) || (a == KindFloat && b == KindInt):
		return KindFloat
	default:
		return KindString
	}
}

// ColumnKind infers the kind of the column at idx.
func (t *Table) ColumnKind(idx int) Kind {
	k := KindNull
	for _, row := range t.Rows {
		k = MergeKinds(k, KindOf(row[idx]))
		if k == KindString {
			break
		}
	}
	return k
}

// Coerce converts v to a value of kind k. Integers become floats in
// float columns and values of string columns are formatted as strings.
func Coerce(k Kind, v any) any {
	if v == nil {
		return nil
	}
	switch k {
	case KindFloat:
		if f, ok := ToFloat(v); ok {
			return f
		}
		return nil
	case KindInt:
		if i, ok := v.(int); ok {
			return int64(i)
		}
	case KindString:
		if _, ok := v.(string); !ok {
			return FormatValue(v)
		}
	}
	return v
}
