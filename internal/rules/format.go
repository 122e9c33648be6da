// internal/rules/format.go
package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// String renders the rule in definition order for humans, e.g.
//
//	(age GreaterThan 18 and tags Contains ["vip"])
func (r *Rule) String() string {
	var b strings.Builder
	r.format(&b)
	return b.String()
}

func (r *Rule) format(b *strings.Builder) {
	if r.kind == KindComparison {
		b.WriteString(r.path)
		b.WriteByte(' ')
		b.WriteString(string(r.op))
		if r.value != nil {
			b.WriteByte(' ')
			b.WriteString(formatValue(r.value))
		}
		return
	}

	b.WriteByte('(')
	for i, child := range r.children {
		if i > 0 {
			fmt.Fprintf(b, " %s ", r.kind)
		}
		child.format(b)
	}
	b.WriteByte(')')
}

// formatValue prints v as JSON, falling back to %v for values JSON cannot
// encode.
func formatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
