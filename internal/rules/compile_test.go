// internal/rules/compile_test.go
package rules

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/solatis/decisiontree/internal/types"
)

func TestCompile_Shapes(t *testing.T) {
	tests := []struct {
		name string
		def  types.RuleDefinition
		want Kind
	}{
		{"comparison", types.Cond("foo", "Equals", "bar"), KindComparison},
		{"comparison without value", types.Cond("foo", "IsNull", nil), KindComparison},
		{"and", types.And(types.Cond("a", "IsTrue", nil)), KindAll},
		{"or", types.Or(types.Cond("a", "IsTrue", nil), types.Cond("b", "IsTrue", nil)), KindAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(tt.def)
			if err != nil {
				t.Fatalf("Compile() error = %v, want nil", err)
			}
			if r.Kind() != tt.want {
				t.Errorf("Kind() = %v, want %v", r.Kind(), tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name         string
		def          types.RuleDefinition
		wantErr      error
		wantLocation string
	}{
		{
			name:         "unknown operator",
			def:          types.Cond("foo", "Matches", "x"),
			wantErr:      types.ErrUnknownOperator,
			wantLocation: "operator",
		},
		{
			name:         "missing operator",
			def:          types.RuleDefinition{Path: "foo"},
			wantErr:      types.ErrUnknownOperator,
			wantLocation: "operator",
		},
		{
			name:         "missing path",
			def:          types.RuleDefinition{Operator: "IsNull"},
			wantErr:      types.ErrMissingPath,
			wantLocation: "path",
		},
		{
			name:         "empty definition",
			def:          types.RuleDefinition{},
			wantErr:      types.ErrMissingPath,
			wantLocation: "path",
		},
		{
			name:         "malformed path",
			def:          types.Cond("foo..bar", "IsNull", nil),
			wantErr:      types.ErrInvalidPath,
			wantLocation: "path",
		},
		{
			name:         "empty and",
			def:          types.And(),
			wantErr:      types.ErrEmptyCompound,
			wantLocation: "and",
		},
		{
			name:         "empty or",
			def:          types.Or(),
			wantErr:      types.ErrEmptyCompound,
			wantLocation: "or",
		},
		{
			name: "compound mixed with comparison keys",
			def: types.RuleDefinition{
				And:      []types.RuleDefinition{types.Cond("a", "IsTrue", nil)},
				Path:     "b",
				Operator: "IsTrue",
			},
			wantErr: types.ErrAmbiguousRule,
		},
		{
			name: "and with or",
			def: types.RuleDefinition{
				And: []types.RuleDefinition{types.Cond("a", "IsTrue", nil)},
				Or:  []types.RuleDefinition{types.Cond("b", "IsTrue", nil)},
			},
			wantErr: types.ErrAmbiguousRule,
		},
		{
			name: "nested error location",
			def: types.Or(
				types.Cond("a", "IsTrue", nil),
				types.And(types.Cond("b", "IsTrue", nil), types.Cond("c", "Nope", nil)),
			),
			wantErr:      types.ErrUnknownOperator,
			wantLocation: "or[1].and[1].operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(tt.def)
			if err == nil {
				t.Fatalf("Compile() = %v, want error", r)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
			var ce *types.ConstructionError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile() error type = %T, want *types.ConstructionError", err)
			}
			if ce.Location != tt.wantLocation {
				t.Errorf("Location = %q, want %q", ce.Location, tt.wantLocation)
			}
		})
	}
}

func TestCompile_DefinitionRoundTrip(t *testing.T) {
	defs := []string{
		`{"path":"foo","operator":"Equals","value":"bar"}`,
		`{"path":"foo","operator":"IsNull"}`,
		`{"and":[{"path":"a","operator":"GreaterThan","value":1},{"path":"b.c","operator":"In","value":["x","y"]}]}`,
		`{"or":[{"path":"a","operator":"IsTrue"},{"and":[{"path":"b","operator":"Contains","value":[3,4]}]}]}`,
	}

	for _, raw := range defs {
		t.Run(raw, func(t *testing.T) {
			var def types.RuleDefinition
			if err := json.Unmarshal([]byte(raw), &def); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			r, err := Compile(def)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			out, err := json.Marshal(r.Definition())
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if !jsonEqual(t, raw, string(out)) {
				t.Errorf("Definition() = %s, want %s", out, raw)
			}
		})
	}
}

// Compiled rules must not observe later mutation of the definition.
func TestCompile_CopiesValue(t *testing.T) {
	allowed := []any{"a", "b"}
	r := MustCompile(types.Cond("x", "In", allowed))
	allowed[0] = "z"

	if !r.Evaluate(map[string]any{"x": "a"}) {
		t.Errorf("Evaluate() = false after mutating definition value, want true")
	}
	def := r.Definition()
	def.Value.([]any)[1] = "z"
	if !r.Evaluate(map[string]any{"x": "b"}) {
		t.Errorf("Evaluate() = false after mutating Definition() result, want true")
	}
}

func TestCompile_ChildrenOrderedByCost(t *testing.T) {
	def := types.And(
		types.Cond("a.b.c.d", "ContainsSubstring", "x"), // 4*16 + 10
		types.Cond("e", "IsNull", nil),                  // 16 + 1
		types.Cond("f", "Equals", 1),                    // 16 + 5
		types.Cond("g", "IsNotNull", nil),               // 16 + 1
	)
	r := MustCompile(def)

	var got []string
	for _, child := range r.order {
		got = append(got, child.Path())
	}
	want := []string{"e", "g", "f", "a.b.c.d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("evaluation order = %v, want %v", got, want)
	}

	// Definition order is preserved for serialization
	var defOrder []string
	for _, child := range r.Rules() {
		defOrder = append(defOrder, child.Path())
	}
	if !reflect.DeepEqual(defOrder, []string{"a.b.c.d", "e", "f", "g"}) {
		t.Errorf("Rules() order = %v", defOrder)
	}

	if want := (4*CostLookupPerSegment + CostSubstring) + 2*(CostLookupPerSegment+CostNullCheck) + (CostLookupPerSegment + CostEquals); r.Cost() != want {
		t.Errorf("Cost() = %d, want %d", r.Cost(), want)
	}
}

func TestCompile_MembershipCostScalesWithValues(t *testing.T) {
	small := MustCompile(types.Cond("a", "In", []any{"x"}))
	large := MustCompile(types.Cond("a", "In", []any{"x", "y", "z"}))
	if small.Cost() != CostLookupPerSegment+CostIn {
		t.Errorf("small Cost() = %d, want %d", small.Cost(), CostLookupPerSegment+CostIn)
	}
	if large.Cost() != CostLookupPerSegment+3*CostIn {
		t.Errorf("large Cost() = %d, want %d", large.Cost(), CostLookupPerSegment+3*CostIn)
	}
}

func jsonEqual(t *testing.T, a, b string) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal([]byte(a), &va); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", a, err)
	}
	if err := json.Unmarshal([]byte(b), &vb); err != nil {
		t.Fatalf("json.Unmarshal(%s) error = %v", b, err)
	}
	return reflect.DeepEqual(va, vb)
}
