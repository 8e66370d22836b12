package erp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgersync/internal/domain"
)

const dateLayout = "2006-01-02"

// normalize converts values into what the ERP expects on the wire:
// decimals become floats and times become dates. Named map and slice types
// are flattened to their plain equivalents.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return val.InexactFloat64()
	case *decimal.Decimal:
		if val == nil {
			return false
		}
		return val.InexactFloat64()
	case time.Time:
		if val.IsZero() {
			return false
		}
		return val.Format(dateLayout)
	case *time.Time:
		if val == nil || val.IsZero() {
			return false
		}
		return val.Format(dateLayout)
	case string, bool, int, int32, int64, float32, float64, json.Number:
		return val
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = normalize(val[i])
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.String:
		return rv.String()
	}

	return v
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// hasCommands reports whether a normalized value map carries x2many command
// tuples such as (0, 0, {...}).
func hasCommands(values map[string]any) bool {
	for _, v := range values {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			if _, isTuple := item.([]any); isTuple {
				return true
			}
		}
	}
	return false
}

// searchDomain renders conditions as an ERP domain expression.
func searchDomain(filter []domain.Condition) []any {
	out := make([]any, 0, len(filter))
	for _, c := range filter {
		op := c.Operator
		if op == "" {
			op = "="
		}
		out = append(out, []any{c.Field, op, normalize(c.Value)})
	}
	return out
}

// toInt64 reads a record id from a decoded JSON value.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("%w: unexpected id %v (%T)", domain.ErrExternalRejected, v, v)
	}
}

// records converts a decoded list of objects.
func records(v any) ([]map[string]any, error) {
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: expected a list of records, got %T", domain.ErrExternalRejected, v)
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a record, got %T", domain.ErrExternalRejected, item)
		}
		out = append(out, rec)
	}
	return out, nil
}
