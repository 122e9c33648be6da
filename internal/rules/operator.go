// internal/rules/operator.go
package rules

import (
	"fmt"

	"github.com/solatis/decisiontree/internal/types"
)

// Operator names a comparison kind usable in a comparison rule.
// The set is closed: Compare handles every value returned by Operators.
type Operator string

const (
	// OpIsNull and OpIsNotNull test for nil, which covers both JSON null and
	// an absent field.
	OpIsNull               Operator = "IsNull"
	OpIsNotNull            Operator = "IsNotNull"
	OpIsTrue               Operator = "IsTrue"
	OpIsFalse              Operator = "IsFalse"
	OpEquals               Operator = "Equals"
	OpNotEquals            Operator = "NotEquals"
	OpContains             Operator = "Contains"
	OpNotContains          Operator = "NotContains"
	OpIn                   Operator = "In"
	OpNotIn                Operator = "NotIn"
	OpGreaterThan          Operator = "GreaterThan"
	OpGreaterThanOrEqualTo Operator = "GreaterThanOrEqualTo"
	OpLessThan             Operator = "LessThan"
	OpLessThanOrEqualTo    Operator = "LessThanOrEqualTo"
	OpContainsSubstring    Operator = "ContainsSubstring"
	OpNotContainsSubstring Operator = "NotContainsSubstring"
)

var operators = []Operator{
	OpIsNull,
	OpIsNotNull,
	OpIsTrue,
	OpIsFalse,
	OpEquals,
	OpNotEquals,
	OpContains,
	OpNotContains,
	OpIn,
	OpNotIn,
	OpGreaterThan,
	OpGreaterThanOrEqualTo,
	OpLessThan,
	OpLessThanOrEqualTo,
	OpContainsSubstring,
	OpNotContainsSubstring,
}

// Operators returns every supported operator in declaration order.
func Operators() []Operator {
	return append([]Operator(nil), operators...)
}

// ParseOperator converts an operator name to an Operator.
// Names are case-sensitive. Returns ErrUnknownOperator otherwise.
func ParseOperator(name string) (Operator, error) {
	for _, op := range operators {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w %q", types.ErrUnknownOperator, name)
}

func (op Operator) String() string { return string(op) }
