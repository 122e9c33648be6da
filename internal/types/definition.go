// internal/types/definition.go
package types

import "encoding/json"

/*
 * Definition types for decision trees.
 *
 * Mirror the JSON definition format one-to-one:
 *
 *   TreeDefinition = { condition, children?, fallbackValue? }
 *   NodeDefinition = { condition, value }            (leaf)
 *                  | { condition, children? }        (branch)
 *   RuleDefinition = { and: [...] } | { or: [...] }
 *                  | { path, operator, value? }
 *
 * Shape is carried by key presence. A nil And/Or slice means the key is
 * absent; a non-nil empty slice means it was present with no children.
 * NodeDefinition.HasValue records presence of the value key, so a leaf
 * whose value is null or false is still a leaf.
 */

// RuleDefinition describes a predicate: a compound and/or over child rules,
// or a single comparison.
type RuleDefinition struct {
	And      []RuleDefinition
	Or       []RuleDefinition
	Path     string
	Operator string
	Value    any
}

// IsCompound reports whether the definition carries an and or or key.
func (d RuleDefinition) IsCompound() bool {
	return d.And != nil || d.Or != nil
}

// HasComparisonKeys reports whether any of path, operator or value is set.
func (d RuleDefinition) HasComparisonKeys() bool {
	return d.Path != "" || d.Operator != "" || d.Value != nil
}

type ruleJSON struct {
	And      *[]RuleDefinition `json:"and,omitempty"`
	Or       *[]RuleDefinition `json:"or,omitempty"`
	Path     string            `json:"path,omitempty"`
	Operator string            `json:"operator,omitempty"`
	Value    any               `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d RuleDefinition) MarshalJSON() ([]byte, error) {
	out := ruleJSON{Path: d.Path, Operator: d.Operator, Value: d.Value}
	if d.And != nil {
		out.And = &d.And
	}
	if d.Or != nil {
		out.Or = &d.Or
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *RuleDefinition) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = RuleDefinition{Path: in.Path, Operator: in.Operator, Value: in.Value}
	if in.And != nil {
		d.And = nonNil(*in.And)
	}
	if in.Or != nil {
		d.Or = nonNil(*in.Or)
	}
	return nil
}

func nonNil(rules []RuleDefinition) []RuleDefinition {
	if rules == nil {
		return []RuleDefinition{}
	}
	return rules
}

// NodeDefinition describes a leaf (HasValue) or a branch.
type NodeDefinition struct {
	Condition RuleDefinition
	Children  []NodeDefinition
	Value     any
	HasValue  bool
}

type leafJSON struct {
	Condition RuleDefinition `json:"condition"`
	Value     any            `json:"value"`
}

type branchJSON struct {
	Condition RuleDefinition   `json:"condition"`
	Children  []NodeDefinition `json:"children"`
}

// MarshalJSON implements json.Marshaler.
// Leaves always emit value (null included); branches always emit children.
func (d NodeDefinition) MarshalJSON() ([]byte, error) {
	if d.HasValue {
		return json.Marshal(leafJSON{Condition: d.Condition, Value: d.Value})
	}
	children := d.Children
	if children == nil {
		children = []NodeDefinition{}
	}
	return json.Marshal(branchJSON{Condition: d.Condition, Children: children})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *NodeDefinition) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	var body struct {
		Condition RuleDefinition   `json:"condition"`
		Children  []NodeDefinition `json:"children"`
		Value     any              `json:"value"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	_, hasValue := keys["value"]
	*d = NodeDefinition{
		Condition: body.Condition,
		Children:  body.Children,
		Value:     body.Value,
		HasValue:  hasValue,
	}
	return nil
}

// TreeDefinition describes a whole tree: a root condition, ordered top-level
// children and an optional fallback value.
type TreeDefinition struct {
	Condition     RuleDefinition   `json:"condition"`
	Children      []NodeDefinition `json:"children"`
	FallbackValue any              `json:"fallbackValue,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d TreeDefinition) MarshalJSON() ([]byte, error) {
	type alias TreeDefinition
	out := alias(d)
	if out.Children == nil {
		out.Children = []NodeDefinition{}
	}
	return json.Marshal(out)
}

// Cond builds a comparison rule definition.
func Cond(path, operator string, value any) RuleDefinition {
	return RuleDefinition{Path: path, Operator: operator, Value: value}
}

// And builds a conjunction over rules.
func And(rules ...RuleDefinition) RuleDefinition {
	return RuleDefinition{And: append([]RuleDefinition{}, rules...)}
}

// Or builds a disjunction over rules.
func Or(rules ...RuleDefinition) RuleDefinition {
	return RuleDefinition{Or: append([]RuleDefinition{}, rules...)}
}

// Leaf builds a leaf node definition.
func Leaf(condition RuleDefinition, value any) NodeDefinition {
	return NodeDefinition{Condition: condition, Value: value, HasValue: true}
}

// Branch builds a branch node definition.
func Branch(condition RuleDefinition, children ...NodeDefinition) NodeDefinition {
	return NodeDefinition{Condition: condition, Children: children}
}
