package database

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/shopspring/decimal"
)

// Drivers hand back different Go types for the same column: sqlite returns
// TEXT dates, mysql returns []byte unless parseTime is set, postgres returns
// NUMERIC as []byte. These helpers normalise them.

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func mismatch(column string, v any, target string) error {
	return fmt.Errorf("column %s: cannot read %T (%v) as %s: %w", column, v, v, target, analytics.ErrSchemaMismatch)
}

func asString(column string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		return "", mismatch(column, v, "text")
	}
}

func asInt64(column string, v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, mismatch(column, v, "integer")
		}
		return int64(x), nil
	case []byte:
		return parseInt(column, string(x))
	case string:
		return parseInt(column, x)
	default:
		return 0, mismatch(column, v, "integer")
	}
}

func parseInt(column, s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, mismatch(column, s, "integer")
	}
	return n, nil
}

func asDecimal(column string, v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case []byte:
		return parseDecimal(column, string(x))
	case string:
		return parseDecimal(column, x)
	default:
		return decimal.Zero, mismatch(column, v, "decimal")
	}
}

func parseDecimal(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, mismatch(column, s, "decimal")
	}
	return d, nil
}

func asTime(column string, v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case []byte:
		return parseTime(column, string(x))
	case string:
		return parseTime(column, x)
	default:
		return time.Time{}, mismatch(column, v, "timestamp")
	}
}

// asNullTime maps NULL and the empty string to nil rather than to a zero
// date, so a missing value can never pose as a real one.
func asNullTime(column string, v any) (*time.Time, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
	case []byte:
		if strings.TrimSpace(string(x)) == "" {
			return nil, nil
		}
	}
	t, err := asTime(column, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTime(column, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, mismatch(column, s, "timestamp")
}
