// internal/rules/operators.go
package rules

import (
	"cmp"
	"strings"
)

/*
 * Operator comparison logic.
 *
 * Compare receives the resolved left operand (nil when the path is missing)
 * and the rule's configured value. It is total: type mismatches produce
 * false for positive operators, and the Not* operators are plain negations
 * of their positive counterpart.
 *
 * Operators:
 *   - IsNull/IsNotNull: nil checks
 *   - IsTrue/IsFalse: strict boolean checks, no truthiness
 *   - Equals/NotEquals: structural equality (deepEqual)
 *   - Contains/NotContains: left sequence intersects value (cast to sequence)
 *   - In/NotIn: left is a member of value (sequence, string or object)
 *   - GreaterThan..LessThanOrEqualTo: numbers by value, strings lexically
 *   - ContainsSubstring/NotContainsSubstring: case-insensitive substring
 */

// Compare applies op to the left operand and the rule value.
func Compare(op Operator, left, value any) bool {
	switch op {
	case OpIsNull:
		return isNil(left)
	case OpIsNotNull:
		return !isNil(left)
	case OpIsTrue:
		b, ok := left.(bool)
		return ok && b
	case OpIsFalse:
		b, ok := left.(bool)
		return ok && !b
	case OpEquals:
		return deepEqual(left, value)
	case OpNotEquals:
		return !deepEqual(left, value)
	case OpContains:
		return compareContains(left, value)
	case OpNotContains:
		return !compareContains(left, value)
	case OpIn:
		return compareIn(left, value)
	case OpNotIn:
		return !compareIn(left, value)
	case OpGreaterThan:
		c, ok := compareOrdered(left, value)
		return ok && c > 0
	case OpGreaterThanOrEqualTo:
		c, ok := compareOrdered(left, value)
		return ok && c >= 0
	case OpLessThan:
		c, ok := compareOrdered(left, value)
		return ok && c < 0
	case OpLessThanOrEqualTo:
		c, ok := compareOrdered(left, value)
		return ok && c <= 0
	case OpContainsSubstring:
		return containsSubstring(left, value)
	case OpNotContainsSubstring:
		return !containsSubstring(left, value)
	default:
		return false
	}
}

// compareContains reports whether left (a sequence) shares at least one
// element with value. A scalar value is treated as a one-element sequence.
func compareContains(left, value any) bool {
	elems, ok := asSequence(left)
	if !ok {
		return false
	}
	for _, want := range castSequence(value) {
		for _, have := range elems {
			if deepEqual(have, want) {
				return true
			}
		}
	}
	return false
}

// compareIn reports whether left is a member of value.
// Sequences test elements, strings test substrings, objects test values.
func compareIn(left, value any) bool {
	if s, ok := value.(string); ok {
		l, ok := left.(string)
		return ok && strings.Contains(s, l)
	}
	if seq, ok := asSequence(value); ok {
		for _, elem := range seq {
			if deepEqual(left, elem) {
				return true
			}
		}
		return false
	}
	if obj, ok := asObject(value); ok {
		for _, elem := range obj {
			if deepEqual(left, elem) {
				return true
			}
		}
	}
	return false
}

// compareOrdered performs three-way comparison (-1/0/1).
// The flag is false for incomparable operands, including NaN.
func compareOrdered(a, b any) (int, bool) {
	if na, ok := toFloat64(a); ok {
		nb, ok := toFloat64(b)
		if !ok || na != na || nb != nb {
			return 0, false
		}
		return cmp.Compare(na, nb), true
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

// containsSubstring is a case-insensitive substring test.
// A nil, empty or non-string left operand never contains anything.
func containsSubstring(left, value any) bool {
	l, ok := left.(string)
	if !ok || l == "" {
		return false
	}
	v, ok := value.(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(l), strings.ToLower(v))
}
