// internal/rules/evaluate_test.go
package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/decisiontree/internal/types"
)

func TestEvaluate_Equals(t *testing.T) {
	r := MustCompile(types.Cond("foo", "Equals", "bar"))

	tests := []struct {
		name   string
		record string
		want   bool
	}{
		{"match", `{"foo": "bar"}`, true},
		{"mismatch", `{"foo": "baz"}`, false},
		{"missing", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Evaluate(mustRecord(t, tt.record)); got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.record, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Contains(t *testing.T) {
	record := map[string]any{"nums": []any{float64(1), float64(2), float64(3)}}

	if !MustCompile(types.Cond("nums", "Contains", []any{3, 4})).Evaluate(record) {
		t.Errorf("Contains [3,4] = false, want true")
	}
	if MustCompile(types.Cond("nums", "Contains", []any{9})).Evaluate(record) {
		t.Errorf("Contains [9] = true, want false")
	}
}

func TestEvaluate_SubstringOnNestedPath(t *testing.T) {
	r := MustCompile(types.Cond("bar.baz", "ContainsSubstring", "foo"))

	if !r.Evaluate(mustRecord(t, `{"foo": "bar", "bar": {"baz": "oOoFoOo"}}`)) {
		t.Errorf("Evaluate() = false, want true")
	}
	if r.Evaluate(mustRecord(t, `{"foo": "bar"}`)) {
		t.Errorf("Evaluate() = true for missing path, want false")
	}
}

func TestEvaluate_Or(t *testing.T) {
	r := MustCompile(types.Or(
		types.Cond("role", "Equals", "admin"),
		types.Cond("role", "Equals", "owner"),
	))

	tests := []struct {
		record map[string]any
		want   bool
	}{
		{map[string]any{"role": "admin"}, true},
		{map[string]any{"role": "owner"}, true},
		{map[string]any{"role": "guest"}, false},
		{map[string]any{}, false},
	}

	for _, tt := range tests {
		if got := r.Evaluate(tt.record); got != tt.want {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.record, got, tt.want)
		}
	}
}

func TestEvaluate_And(t *testing.T) {
	r := MustCompile(types.And(
		types.Cond("status", "Equals", "active"),
		types.Cond("priority", "GreaterThan", 5),
	))

	if !r.Evaluate(map[string]any{"status": "active", "priority": float64(10)}) {
		t.Errorf("Evaluate() = false, want true")
	}
	if r.Evaluate(map[string]any{"status": "active", "priority": float64(1)}) {
		t.Errorf("Evaluate() = true with failing second condition, want false")
	}
	if r.Evaluate(map[string]any{"status": "inactive", "priority": float64(10)}) {
		t.Errorf("Evaluate() = true with failing first condition, want false")
	}
}

// Missing intermediates never panic and resolve to nil.
func TestEvaluate_PathSafety(t *testing.T) {
	records := []any{
		nil,
		"scalar",
		[]any{1, 2},
		map[string]any{},
		map[string]any{"a": nil},
		map[string]any{"a": "string"},
		map[string]any{"a": map[string]any{"b": []any{}}},
	}
	isNull := MustCompile(types.Cond("a.b[0].c", "IsNull", nil))
	isNotNull := MustCompile(types.Cond("a.b[0].c", "IsNotNull", nil))

	for _, rec := range records {
		if !isNull.Evaluate(rec) {
			t.Errorf("IsNull on %v = false, want true", rec)
		}
		if isNotNull.Evaluate(rec) {
			t.Errorf("IsNotNull on %v = true, want false", rec)
		}
	}
}

// Property-based test: and/or obey conjunction/disjunction laws
func TestEvaluate_PropertyCompoundLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	keys := []string{"k0", "k1", "k2", "k3", "k4", "k5"}

	// Builds one IsTrue comparison per key and a record where key i holds flags[i].
	build := func(flags []bool) ([]types.RuleDefinition, []*Rule, map[string]any) {
		record := map[string]any{}
		var defs []types.RuleDefinition
		var compiled []*Rule
		for i, f := range flags {
			record[keys[i]] = f
			def := types.Cond(keys[i], "IsTrue", nil)
			defs = append(defs, def)
			compiled = append(compiled, MustCompile(def))
		}
		return defs, compiled, record
	}

	properties.Property("and is true iff every child is true", prop.ForAll(
		func(flags []bool) bool {
			defs, children, record := build(flags)
			want := true
			for _, c := range children {
				want = want && c.Evaluate(record)
			}
			return MustCompile(types.And(defs...)).Evaluate(record) == want
		},
		gen.SliceOfN(len(keys), gen.Bool()).SuchThat(func(v []bool) bool { return len(v) > 0 }),
	))

	properties.Property("or is true iff at least one child is true", prop.ForAll(
		func(flags []bool) bool {
			defs, children, record := build(flags)
			want := false
			for _, c := range children {
				want = want || c.Evaluate(record)
			}
			return MustCompile(types.Or(defs...)).Evaluate(record) == want
		},
		gen.SliceOfN(len(keys), gen.Bool()).SuchThat(func(v []bool) bool { return len(v) > 0 }),
	))

	properties.Property("definition round-trip preserves evaluation", prop.ForAll(
		func(flags []bool, useOr bool) bool {
			defs, _, record := build(flags)
			def := types.And(defs...)
			if useOr {
				def = types.Or(defs...)
			}
			r := MustCompile(def)
			return MustCompile(r.Definition()).Evaluate(record) == r.Evaluate(record)
		},
		gen.SliceOfN(len(keys), gen.Bool()).SuchThat(func(v []bool) bool { return len(v) > 0 }),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestEvaluate_AndWithExplicitNull(t *testing.T) {
	r := MustCompile(types.And(
		types.Cond("foo.bar", "Equals", "baz"),
		types.Cond("foo.baz.quux", "IsNull", nil),
	))

	if !r.Evaluate(map[string]any{"foo": map[string]any{"bar": "baz", "baz": map[string]any{"quux": nil}}}) {
		t.Errorf("Evaluate() = false with null quux, want true")
	}
	if r.Evaluate(map[string]any{"foo": map[string]any{"bar": "baz", "baz": map[string]any{"quux": "I'M NOT NULL"}}}) {
		t.Errorf("Evaluate() = true with non-null quux, want false")
	}
}
