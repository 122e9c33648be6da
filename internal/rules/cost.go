// internal/rules/cost.go
package rules

/*
 * Cost model for rule evaluation order.
 *
 * Compound rules evaluate their children cheapest first so that the
 * short-circuit (first false for and, first true for or) is reached with
 * as little work as possible. Rules are pure, so the order never changes
 * the result; serialization keeps the definition order.
 *
 * Cost formula: lookup_cost + operator_cost * value_multiplier
 *
 * Lookup cost dominates for deep paths. Sequence-valued operators
 * (Contains, In) scale with the size of the configured value.
 */

const (
	// Operator base costs
	CostNullCheck = 1
	CostBoolCheck = 1
	CostEquals    = 5
	CostOrdered   = 7
	CostIn        = 8
	CostSubstring = 10
	CostContains  = 12

	// Field lookup cost per path segment
	CostLookupPerSegment = 16
)

// Cost returns the compiled cost of the rule.
func (r *Rule) Cost() int { return r.cost }

// comparisonCost computes the cost of a single comparison rule.
func comparisonCost(segments int, op Operator, value any) int {
	return segments*CostLookupPerSegment + operatorCost(op)*valueMultiplier(op, value)
}

// operatorCost maps an operator to its base cost.
func operatorCost(op Operator) int {
	switch op {
	case OpIsNull, OpIsNotNull:
		return CostNullCheck
	case OpIsTrue, OpIsFalse:
		return CostBoolCheck
	case OpEquals, OpNotEquals:
		return CostEquals
	case OpGreaterThan, OpGreaterThanOrEqualTo, OpLessThan, OpLessThanOrEqualTo:
		return CostOrdered
	case OpIn, OpNotIn:
		return CostIn
	case OpContainsSubstring, OpNotContainsSubstring:
		return CostSubstring
	case OpContains, OpNotContains:
		return CostContains
	default:
		return CostEquals
	}
}

// valueMultiplier scales membership operators by the number of candidates.
func valueMultiplier(op Operator, value any) int {
	switch op {
	case OpIn, OpNotIn, OpContains, OpNotContains:
		if seq, ok := asSequence(value); ok && len(seq) > 1 {
			return len(seq)
		}
	}
	return 1
}
