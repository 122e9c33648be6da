// Package tree implements decision trees: ordered, first-truthy-match
// search over nested conditional nodes.
//
// A Tree is built once from a types.TreeDefinition. Evaluate is pure and
// safe to call from many goroutines at once. AppendChild is not
// synchronized; finish building a tree before sharing it, or guard
// AppendChild and Evaluate with a lock.
package tree

import (
	"encoding/json"

	"github.com/solatis/decisiontree/internal/rules"
	"github.com/solatis/decisiontree/internal/types"
)

// Tree is the root of a decision tree. It behaves like a branch with no
// parent, plus an optional fallback value.
type Tree struct {
	root     *Branch
	fallback any
}

// Result describes how an evaluation was decided.
type Result struct {
	Value    any
	Matched  bool
	Leaf     *Leaf // nil when nothing matched or the fallback was used
	Fallback bool
}

// New builds a tree from def. Any invalid rule anywhere in the definition
// fails the whole construction with a *types.ConstructionError.
func New(def types.TreeDefinition) (*Tree, error) {
	condition, err := rules.Compile(def.Condition)
	if err != nil {
		return nil, types.NewConstructionError("condition", err)
	}
	root := &Branch{condition: condition}
	if err := root.appendDefinitions(def.Children); err != nil {
		return nil, err
	}
	return &Tree{root: root, fallback: types.CloneValue(def.FallbackValue)}, nil
}

// Parse decodes a JSON tree definition and builds the tree.
func Parse(data []byte) (*Tree, error) {
	var def types.TreeDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return New(def)
}

// Evaluate returns the first truthy leaf value for record, or the fallback
// value when the root condition holds and no leaf produced one.
func (t *Tree) Evaluate(record any) (any, bool) {
	res := t.Match(record)
	return res.Value, res.Matched
}

// Match is Evaluate with the deciding leaf reported.
func (t *Tree) Match(record any) Result {
	if !t.root.condition.Evaluate(record) {
		return Result{}
	}
	if leaf, ok := t.root.matchChildren(record); ok {
		return Result{Value: leaf.value, Matched: true, Leaf: leaf}
	}
	if t.fallback != nil {
		return Result{Value: t.fallback, Matched: true, Fallback: true}
	}
	return Result{}
}

// Root returns the root branch. Top-level nodes report it as their parent.
func (t *Tree) Root() *Branch { return t.root }

// Condition returns the root condition.
func (t *Tree) Condition() *rules.Rule { return t.root.condition }

// FallbackValue returns the configured fallback, nil if none.
func (t *Tree) FallbackValue() any { return t.fallback }

// Children returns a copy of the top-level children.
func (t *Tree) Children() []Node { return t.root.Children() }

// AppendChild builds a node from def and appends it to the top level.
func (t *Tree) AppendChild(def types.NodeDefinition) (Node, error) {
	return t.root.AppendChild(def)
}

// Walk visits every node below the root depth-first, pre-order, left to
// right. Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(Node) bool) {
	var visit func(nodes []Node)
	visit = func(nodes []Node) {
		for _, n := range nodes {
			if fn(n) {
				visit(n.Children())
			}
		}
	}
	visit(t.root.children)
}

// Leaves returns every leaf in depth-first pre-order.
func (t *Tree) Leaves() []*Leaf {
	var leaves []*Leaf
	t.Walk(func(n Node) bool {
		if leaf, ok := n.(*Leaf); ok {
			leaves = append(leaves, leaf)
		}
		return true
	})
	return leaves
}

// Definition serializes the tree. New(t.Definition()) yields a tree that
// evaluates identically.
func (t *Tree) Definition() types.TreeDefinition {
	root := t.root.Definition()
	return types.TreeDefinition{
		Condition:     root.Condition,
		Children:      root.Children,
		FallbackValue: types.CloneValue(t.fallback),
	}
}

// MarshalJSON implements json.Marshaler.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Definition())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tree) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
