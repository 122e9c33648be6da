// internal/rules/coercion.go
package rules

import (
	"encoding/json"
	"math"
	"reflect"
)

/*
 * Value normalization for rule evaluation.
 *
 * Records arrive either decoded from JSON (float64, string, bool, nil,
 * []any, map[string]any) or built by Go callers with arbitrary numeric
 * widths and typed collections. Operators compare through these helpers so
 * that int(3), float32(3) and json.Number("3") all behave like the JSON
 * number 3.
 *
 * No cross-kind coercion: a numeric string is not a number and a bool is
 * not 0/1. Comparisons between kinds are simply unequal / unordered.
 */

// toFloat64 converts any Go numeric type or json.Number to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// isNil reports whether v is nil or a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// asSequence returns v as []any when it is a slice or array.
// Strings are not sequences.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case nil, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// castSequence wraps a non-sequence value in a one-element sequence.
func castSequence(v any) []any {
	if seq, ok := asSequence(v); ok {
		return seq
	}
	return []any{v}
}

// asObject returns v as map[string]any when it is a map with string keys.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// deepEqual is structural equality over JSON-shaped values.
// Numbers compare by value regardless of Go type; NaN equals NaN.
func deepEqual(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if na, ok := toFloat64(a); ok {
		nb, ok := toFloat64(b)
		if !ok {
			return false
		}
		return na == nb || (math.IsNaN(na) && math.IsNaN(nb))
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	if as, ok := asSequence(a); ok {
		bs, ok := asSequence(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !deepEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	if am, ok := asObject(a); ok {
		bm, ok := asObject(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
