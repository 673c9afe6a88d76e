// Package value classifies raw tabular values as categorical, numeric, or
// temporal and converts them to the float coordinates the scales work in.
package value

import (
	"fmt"
	"math"
	"time"
)

// Record is one row of tabular input keyed by field name.
type Record map[string]any

// Kind is the classification of a single value or a collection of values.
type Kind int

const (
	Absent Kind = iota
	Categorical
	Numeric
	Temporal
	Mixed
	Empty
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Categorical:
		return "categorical"
	case Numeric:
		return "numeric"
	case Temporal:
		return "temporal"
	case Mixed:
		return "mixed"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf classifies a single value. Unsupported types classify as Mixed so
// that any collection containing them is rejected by Classify.
func KindOf(v any) Kind {
	switch v := v.(type) {
	case nil:
		return Absent
	case string:
		return Categorical
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return Numeric
	case time.Time:
		return Temporal
	case *time.Time:
		if v == nil {
			return Absent
		}
		return Temporal
	default:
		return Mixed
	}
}

// Classify returns the common kind of values, ignoring absent entries.
// It returns Empty when nothing remains and Mixed when the remaining values
// do not share one kind.
func Classify(values []any) Kind {
	kind := Empty
	for _, v := range values {
		k := KindOf(v)
		switch {
		case k == Absent:
			continue
		case k == Mixed:
			return Mixed
		case kind == Empty:
			kind = k
		case kind != k:
			return Mixed
		}
	}
	return kind
}

// Float converts a numeric or temporal value to a float64. Temporal values
// become milliseconds since the Unix epoch. The second result is false for
// absent and categorical values.
func Float(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case time.Time:
		return Millis(v), true
	case *time.Time:
		if v == nil {
			return math.NaN(), false
		}
		return Millis(*v), true
	default:
		return math.NaN(), false
	}
}

// Finite reports whether v converts to a finite float.
func Finite(v any) (float64, bool) {
	f, ok := Float(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return f, false
	}
	return f, true
}

// Millis returns t as fractional milliseconds since the Unix epoch.
func Millis(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e6
}

// Time converts milliseconds since the Unix epoch back to a UTC time.
func Time(ms float64) time.Time {
	sec, frac := math.Modf(ms / 1e3)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// Column extracts the values of key from each record, in order. Missing
// keys yield nil entries.
func Column(records []Record, key string) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r[key]
	}
	return out
}

// Label formats a value for display as a category or tick label.
func Label(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
