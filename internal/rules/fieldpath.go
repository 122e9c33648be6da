// internal/rules/fieldpath.go
package rules

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/solatis/decisiontree/internal/types"
)

/*
 * Field path parsing and resolution for input records.
 *
 * Paths are dot-delimited ("user.address.city"). Array elements are reached
 * either with a numeric segment ("items.0.sku") or bracket notation
 * ("items[0].sku"); bracket notation also accepts quoted keys for keys that
 * contain dots ("labels[\"app.kubernetes.io/name\"]").
 *
 * Resolution never fails: a missing key, an out-of-range index, a null or a
 * scalar in the middle of the path all resolve to (nil, false). Callers that
 * only need the value can ignore the flag since absent and null are both nil.
 *
 * Records are normally JSON-shaped (map[string]any / []any). Other maps with
 * string keys, slices, arrays and pointers are walked through reflection so
 * Go callers can pass typed data without converting it first.
 */

// ParsePath splits a path into segments.
// Returns ErrInvalidPath for empty segments or malformed brackets, and
// ErrPathTooDeep when the result exceeds types.MaxPathDepth.
func ParsePath(path string) ([]types.PathSegment, error) {
	if path == "" {
		return nil, types.ErrMissingPath
	}

	var segments []types.PathSegment
	i := 0
	expectKey := true
	for i < len(path) {
		switch c := path[i]; {
		case c == '.':
			if expectKey {
				return nil, invalidPath(path, "empty segment")
			}
			expectKey = true
			i++
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, invalidPath(path, "unterminated bracket")
			}
			seg, err := parseBracket(path[i+1 : i+end])
			if err != nil {
				return nil, invalidPath(path, err.Error())
			}
			segments = append(segments, seg)
			expectKey = false
			i += end + 1
		default:
			if !expectKey {
				return nil, invalidPath(path, "missing separator")
			}
			end := strings.IndexAny(path[i:], ".[")
			if end < 0 {
				end = len(path) - i
			}
			segments = append(segments, types.PathSegment{Key: path[i : i+end]})
			expectKey = false
			i += end
		}
	}
	if expectKey {
		return nil, invalidPath(path, "trailing separator")
	}
	if len(segments) > types.MaxPathDepth {
		return nil, types.ErrPathTooDeep
	}
	return segments, nil
}

func parseBracket(inner string) (types.PathSegment, error) {
	if len(inner) >= 2 {
		if q := inner[0]; (q == '"' || q == '\'') && inner[len(inner)-1] == q {
			return types.PathSegment{Key: inner[1 : len(inner)-1]}, nil
		}
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return types.PathSegment{}, errBadIndex(inner)
	}
	return types.PathSegment{Index: n, IsIndex: true}, nil
}

type errBadIndex string

func (e errBadIndex) Error() string { return "bad index " + strconv.Quote(string(e)) }

func invalidPath(path, reason string) error {
	return &pathError{path: path, reason: reason}
}

type pathError struct {
	path   string
	reason string
}

func (e *pathError) Error() string {
	return types.ErrInvalidPath.Error() + " " + strconv.Quote(e.path) + ": " + e.reason
}

func (e *pathError) Unwrap() error { return types.ErrInvalidPath }

// FormatPath renders segments back into path syntax.
func FormatPath(segments []types.PathSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		switch {
		case seg.IsIndex:
			b.WriteString("[" + strconv.Itoa(seg.Index) + "]")
		case strings.ContainsAny(seg.Key, ".[]"):
			b.WriteString("[" + strconv.Quote(seg.Key) + "]")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		}
	}
	return b.String()
}

// Resolve walks record along path. The flag reports whether every segment
// was found; the value is nil whenever it is false.
func Resolve(path []types.PathSegment, record any) (any, bool) {
	current := record
	for _, seg := range path {
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// step resolves a single segment against current.
func step(current any, seg types.PathSegment) (any, bool) {
	switch v := current.(type) {
	case map[string]any:
		val, ok := v[segmentKey(seg)]
		return val, ok
	case []any:
		idx, ok := segmentIndex(seg)
		if !ok || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	case nil:
		return nil, false
	}
	return stepReflect(reflect.ValueOf(current), seg)
}

// stepReflect handles typed maps, slices, arrays and pointers.
func stepReflect(rv reflect.Value, seg types.PathSegment) (any, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(segmentKey(seg)).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := segmentIndex(seg)
		if !ok || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		// Scalar value but path continues
		return nil, false
	}
}

func segmentKey(seg types.PathSegment) string {
	if seg.IsIndex {
		return strconv.Itoa(seg.Index)
	}
	return seg.Key
}

func segmentIndex(seg types.PathSegment) (int, bool) {
	if seg.IsIndex {
		return seg.Index, true
	}
	n, err := strconv.Atoi(seg.Key)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
