// internal/rules/evaluate.go
package rules

// Evaluate reports whether record satisfies the rule.
//
// And/or children run in cost order and stop at the first deciding result.
// Comparisons resolve the path against record (missing -> nil) and apply
// the operator. Evaluate has no side effects and never panics on
// well-compiled rules, whatever the shape of record.
func (r *Rule) Evaluate(record any) bool {
	switch r.kind {
	case KindAll:
		for _, child := range r.order {
			if !child.Evaluate(record) {
				return false
			}
		}
		return true
	case KindAny:
		for _, child := range r.order {
			if child.Evaluate(record) {
				return true
			}
		}
		return false
	default:
		left, _ := Resolve(r.segments, record)
		return Compare(r.op, left, r.value)
	}
}
