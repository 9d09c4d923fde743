package canonical

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/domain"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseAmount accepts numeric values and numeric strings; currency symbols and
// thousands separators are tolerated in strings.
func parseAmount(raw any) (float64, error) {
	var amount float64
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: value is missing", domain.ErrInvalidAmount)
	case float64:
		amount = v
	case float32:
		amount = float64(v)
	case int:
		amount = float64(v)
	case int8:
		amount = float64(v)
	case int16:
		amount = float64(v)
	case int32:
		amount = float64(v)
	case int64:
		amount = float64(v)
	case uint:
		amount = float64(v)
	case uint8:
		amount = float64(v)
	case uint16:
		amount = float64(v)
	case uint32:
		amount = float64(v)
	case uint64:
		amount = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", domain.ErrInvalidAmount, v.String())
		}
		amount = f
	case []byte:
		return parseAmount(string(v))
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, fmt.Errorf("%w: value is empty", domain.ErrInvalidAmount)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", domain.ErrInvalidAmount, v)
		}
		amount = f
	default:
		// driver decimals (duckdb.Decimal and friends) expose Float64 or String
		if f, ok := methodSet[interface{ Float64() float64 }](raw); ok {
			amount = f.Float64()
		} else if str, ok := methodSet[fmt.Stringer](raw); ok {
			return parseAmount(str.String())
		} else {
			return 0, fmt.Errorf("%w: unsupported type %T", domain.ErrInvalidAmount, raw)
		}
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", domain.ErrInvalidAmount, amount)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %v is negative", domain.ErrInvalidAmount, amount)
	}
	return amount, nil
}

// methodSet asserts raw to T, also trying a pointer to a copy of raw so methods
// declared on *V are found for a V value.
func methodSet[T any](raw any) (T, bool) {
	if v, ok := raw.(T); ok {
		return v, true
	}
	var zero T
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || rv.Kind() == reflect.Pointer {
		return zero, false
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	v, ok := ptr.Interface().(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// parseTimestamp returns false when raw holds no usable timestamp
func parseTimestamp(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case []byte:
		return parseTimestamp(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// stringify renders opaque identifier-like values; nil becomes empty
func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
