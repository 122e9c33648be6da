package rules

import (
	"testing"

	"github.com/solatis/decisiontree/internal/types"
)

func TestRule_String(t *testing.T) {
	tests := []struct {
		name string
		def  types.RuleDefinition
		want string
	}{
		{"comparison", types.Cond("age", "GreaterThan", 18), "age GreaterThan 18"},
		{"no value", types.Cond("deleted_at", "IsNull", nil), "deleted_at IsNull"},
		{"string value", types.Cond("name", "Equals", "bob"), `name Equals "bob"`},
		{"sequence value", types.Cond("tags", "Contains", []any{"vip", 2}), `tags Contains ["vip",2]`},
		{
			"nested keeps definition order",
			types.Or(
				types.And(types.Cond("a.b.c.d", "Equals", 1), types.Cond("e", "IsTrue", nil)),
				types.Cond("f", "In", []any{"x"}),
			),
			`((a.b.c.d Equals 1 and e IsTrue) or f In ["x"])`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MustCompile(tt.def).String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}
