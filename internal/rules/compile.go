// internal/rules/compile.go
package rules

import (
	"fmt"
	"sort"

	"github.com/solatis/decisiontree/internal/types"
)

/*
 * Rule compilation.
 *
 * Compile turns a RuleDefinition into an immutable Rule, deciding its shape
 * exactly once:
 *   - and key present  -> KindAll over compiled children
 *   - or key present   -> KindAny over compiled children
 *   - otherwise        -> KindComparison (path + operator + value)
 *
 * Compound keys are detected before comparison keys. A definition carrying
 * both is rejected rather than silently preferring one shape.
 *
 * All validation happens here: unknown operators, missing or malformed
 * paths, empty compounds. Evaluation therefore never fails. Errors are
 * *types.ConstructionError values whose Location points into the
 * definition ("or[1].and[0].operator").
 */

// Kind identifies the shape of a compiled rule.
type Kind int

const (
	KindComparison Kind = iota
	KindAll
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "and"
	case KindAny:
		return "or"
	default:
		return "comparison"
	}
}

// Rule is a compiled predicate. Safe for concurrent evaluation.
type Rule struct {
	kind Kind

	children []*Rule // definition order
	order    []*Rule // ascending cost, stable

	path     string
	segments []types.PathSegment
	op       Operator
	value    any

	cost int
}

// Compile validates def and builds a Rule.
func Compile(def types.RuleDefinition) (*Rule, error) {
	if def.IsCompound() {
		if def.HasComparisonKeys() || (def.And != nil && def.Or != nil) {
			return nil, types.NewConstructionError("", types.ErrAmbiguousRule)
		}
		if def.And != nil {
			return compileCompound(KindAll, "and", def.And)
		}
		return compileCompound(KindAny, "or", def.Or)
	}
	return compileComparison(def)
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level rule literals.
func MustCompile(def types.RuleDefinition) *Rule {
	r, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return r
}

func compileCompound(kind Kind, key string, defs []types.RuleDefinition) (*Rule, error) {
	if len(defs) == 0 {
		return nil, types.NewConstructionError(key, types.ErrEmptyCompound)
	}

	r := &Rule{kind: kind, children: make([]*Rule, 0, len(defs))}
	for i, def := range defs {
		child, err := Compile(def)
		if err != nil {
			return nil, types.NewConstructionError(fmt.Sprintf("%s[%d]", key, i), err)
		}
		r.children = append(r.children, child)
		r.cost += child.cost
	}

	// Stable sort: equal-cost children keep definition order
	r.order = append([]*Rule(nil), r.children...)
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.order[i].cost < r.order[j].cost
	})

	return r, nil
}

func compileComparison(def types.RuleDefinition) (*Rule, error) {
	if def.Path == "" {
		return nil, types.NewConstructionError("path", types.ErrMissingPath)
	}
	segments, err := ParsePath(def.Path)
	if err != nil {
		return nil, types.NewConstructionError("path", err)
	}
	op, err := ParseOperator(def.Operator)
	if err != nil {
		return nil, types.NewConstructionError("operator", err)
	}

	value := types.CloneValue(def.Value)
	return &Rule{
		kind:     KindComparison,
		path:     def.Path,
		segments: segments,
		op:       op,
		value:    value,
		cost:     comparisonCost(len(segments), op, value),
	}, nil
}

// Kind returns the rule shape.
func (r *Rule) Kind() Kind { return r.kind }

// Rules returns the child rules of a compound rule in definition order.
func (r *Rule) Rules() []*Rule { return append([]*Rule(nil), r.children...) }

// Path returns the comparison path ("" for compound rules).
func (r *Rule) Path() string { return r.path }

// Operator returns the comparison operator ("" for compound rules).
func (r *Rule) Operator() Operator { return r.op }

// Definition reproduces a definition that compiles to an equivalent rule.
func (r *Rule) Definition() types.RuleDefinition {
	switch r.kind {
	case KindAll, KindAny:
		defs := make([]types.RuleDefinition, len(r.children))
		for i, child := range r.children {
			defs[i] = child.Definition()
		}
		if r.kind == KindAll {
			return types.RuleDefinition{And: defs}
		}
		return types.RuleDefinition{Or: defs}
	default:
		return types.RuleDefinition{
			Path:     r.path,
			Operator: string(r.op),
			Value:    types.CloneValue(r.value),
		}
	}
}
