// internal/rules/operators_test.go
package rules

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		left  any
		value any
		want  bool
	}{
		// Null checks
		{"is_null nil", OpIsNull, nil, nil, true},
		{"is_null value", OpIsNull, "x", nil, false},
		{"is_null nil pointer", OpIsNull, (*int)(nil), nil, true},
		{"is_not_null zero", OpIsNotNull, 0, nil, true},
		{"is_not_null nil", OpIsNotNull, nil, nil, false},

		// Strict booleans
		{"is_true true", OpIsTrue, true, nil, true},
		{"is_true truthy string", OpIsTrue, "true", nil, false},
		{"is_true one", OpIsTrue, float64(1), nil, false},
		{"is_false false", OpIsFalse, false, nil, true},
		{"is_false nil", OpIsFalse, nil, nil, false},
		{"is_false zero", OpIsFalse, float64(0), nil, false},

		// Equality
		{"equals string", OpEquals, "bar", "bar", true},
		{"equals string mismatch", OpEquals, "baz", "bar", false},
		{"equals nil vs value", OpEquals, nil, "bar", false},
		{"equals nil vs nil", OpEquals, nil, nil, true},
		{"equals int vs float", OpEquals, 3, float64(3), true},
		{"equals json number", OpEquals, json.Number("2.5"), 2.5, true},
		{"equals number vs string", OpEquals, float64(1), "1", false},
		{"equals bool vs number", OpEquals, true, float64(1), false},
		{"equals deep slice", OpEquals, []any{float64(1), "a"}, []any{1, "a"}, true},
		{"equals typed slice", OpEquals, []string{"a", "b"}, []any{"a", "b"}, true},
		{"equals slice order", OpEquals, []any{1, 2}, []any{2, 1}, false},
		{"equals deep map", OpEquals, map[string]any{"a": []any{1}}, map[string]any{"a": []any{float64(1)}}, true},
		{"equals map extra key", OpEquals, map[string]any{"a": 1, "b": 2}, map[string]any{"a": 1}, false},
		{"equals NaN", OpEquals, math.NaN(), math.NaN(), true},
		{"not_equals mismatch", OpNotEquals, "baz", "bar", true},
		{"not_equals missing", OpNotEquals, nil, "bar", true},

		// Contains: sequence intersection
		{"contains shared element", OpContains, []any{1, 2, 3}, []any{3, 4}, true},
		{"contains no shared element", OpContains, []any{1, 2, 3}, []any{9}, false},
		{"contains scalar value", OpContains, []any{"a", "b"}, "b", true},
		{"contains typed slice", OpContains, []int{1, 2}, float64(2), true},
		{"contains left scalar", OpContains, "abc", "a", false},
		{"contains left nil", OpContains, nil, "a", false},
		{"not_contains no shared element", OpNotContains, []any{1, 2, 3}, []any{9}, true},
		{"not_contains left nil", OpNotContains, nil, []any{1}, true},

		// In: membership
		{"in sequence", OpIn, "b", []any{"a", "b"}, true},
		{"in sequence miss", OpIn, "c", []any{"a", "b"}, false},
		{"in numeric", OpIn, 2, []any{float64(1), float64(2)}, true},
		{"in string", OpIn, "ell", "hello", true},
		{"in object values", OpIn, "x", map[string]any{"k": "x"}, true},
		{"in object keys not values", OpIn, "k", map[string]any{"k": "x"}, false},
		{"in scalar value", OpIn, "a", float64(1), false},
		{"in nil left", OpIn, nil, []any{"a"}, false},
		{"in nil member", OpIn, nil, []any{nil}, true},
		{"not_in miss", OpNotIn, "c", []any{"a", "b"}, true},
		{"not_in hit", OpNotIn, "a", []any{"a", "b"}, false},

		// Ordering
		{"gt numbers", OpGreaterThan, float64(10), 5, true},
		{"gt equal", OpGreaterThan, 5, 5, false},
		{"gte equal", OpGreaterThanOrEqualTo, 5, float64(5), true},
		{"lt numbers", OpLessThan, int64(3), 4.5, true},
		{"lte numbers", OpLessThanOrEqualTo, uint8(4), 4, true},
		{"gt strings", OpGreaterThan, "b", "a", true},
		{"lt strings", OpLessThan, "apple", "banana", true},
		{"gt string vs number", OpGreaterThan, "10", 5, false},
		{"lt string vs number", OpLessThan, "10", 50, false},
		{"gte nil", OpGreaterThanOrEqualTo, nil, 0, false},
		{"lte nil", OpLessThanOrEqualTo, nil, 0, false},
		{"gt bool", OpGreaterThan, true, false, false},
		{"gt NaN", OpGreaterThan, math.NaN(), 1, false},
		{"lte NaN", OpLessThanOrEqualTo, math.NaN(), 1, false},

		// Substrings
		{"substring case-insensitive", OpContainsSubstring, "oOoFoOo", "foo", true},
		{"substring miss", OpContainsSubstring, "bar", "foo", false},
		{"substring empty left", OpContainsSubstring, "", "", false},
		{"substring nil left", OpContainsSubstring, nil, "foo", false},
		{"substring non-string left", OpContainsSubstring, float64(100), "1", false},
		{"substring non-string value", OpContainsSubstring, "100", float64(1), false},
		{"not_substring nil left", OpNotContainsSubstring, nil, "foo", true},
		{"not_substring empty left", OpNotContainsSubstring, "", "foo", true},
		{"not_substring hit", OpNotContainsSubstring, "FOOBAR", "bar", false},

		{"unknown operator", Operator("Bogus"), "x", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.op, tt.left, tt.value); got != tt.want {
				t.Errorf("Compare(%s, %v, %v) = %v, want %v", tt.op, tt.left, tt.value, got, tt.want)
			}
		})
	}
}

// Every operator must be handled by Compare. Each entry exercises the
// operator with an input that makes it true; a missing case falls through
// to default and returns false.
func TestCompare_EveryOperatorHandled(t *testing.T) {
	truthy := map[Operator][2]any{
		OpIsNull:               {nil, nil},
		OpIsNotNull:            {"x", nil},
		OpIsTrue:               {true, nil},
		OpIsFalse:              {false, nil},
		OpEquals:               {"a", "a"},
		OpNotEquals:            {"a", "b"},
		OpContains:             {[]any{"a"}, "a"},
		OpNotContains:          {[]any{"a"}, "b"},
		OpIn:                   {"a", []any{"a"}},
		OpNotIn:                {"a", []any{"b"}},
		OpGreaterThan:          {2, 1},
		OpGreaterThanOrEqualTo: {1, 1},
		OpLessThan:             {1, 2},
		OpLessThanOrEqualTo:    {1, 1},
		OpContainsSubstring:    {"Abc", "b"},
		OpNotContainsSubstring: {"abc", "z"},
	}

	ops := Operators()
	if len(ops) != len(truthy) {
		t.Fatalf("len(Operators()) = %d, want %d", len(ops), len(truthy))
	}
	for _, op := range ops {
		in, ok := truthy[op]
		if !ok {
			t.Errorf("operator %s has no test input", op)
			continue
		}
		if !Compare(op, in[0], in[1]) {
			t.Errorf("Compare(%s, %v, %v) = false, want true", op, in[0], in[1])
		}
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators() {
		got, err := ParseOperator(string(op))
		if err != nil {
			t.Errorf("ParseOperator(%q) error = %v", op, err)
		}
		if got != op {
			t.Errorf("ParseOperator(%q) = %q", op, got)
		}
	}

	for _, name := range []string{"", "equals", "EQUALS", "Exists", "IsNil"} {
		if _, err := ParseOperator(name); err == nil {
			t.Errorf("ParseOperator(%q) error = nil, want error", name)
		}
	}
}
