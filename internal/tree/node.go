package tree

import (
	"fmt"

	"github.com/solatis/decisiontree/internal/rules"
	"github.com/solatis/decisiontree/internal/types"
)

// Node is a Leaf or a Branch. Which one is decided when the node is built
// from its definition and never changes.
type Node interface {
	// Condition gates whether the node is considered at all.
	Condition() *rules.Rule

	// Parent is the enclosing branch; the tree root for top-level nodes.
	// Only used for topology queries, never to mutate the parent.
	Parent() *Branch

	// Depth is the number of edges between the node and the tree root.
	Depth() int

	// Evaluate returns the node's candidate result and whether the node
	// matched. A leaf matches when its condition holds, whatever its value;
	// a branch matches only when one of its children produced a truthy value.
	Evaluate(record any) (any, bool)

	// Children returns a copy of the ordered children (nil for leaves).
	Children() []Node

	// AppendChild builds a node from def and appends it.
	// Leaves return an *types.OperationError.
	AppendChild(def types.NodeDefinition) (Node, error)

	// Definition serializes the node and its subtree.
	Definition() types.NodeDefinition

	// match returns the leaf that produced the node's result.
	match(record any) (*Leaf, bool)
}

// newNode builds a Leaf when def carries a value key, a Branch otherwise.
func newNode(def types.NodeDefinition, parent *Branch) (Node, error) {
	condition, err := rules.Compile(def.Condition)
	if err != nil {
		return nil, types.NewConstructionError("condition", err)
	}
	if def.HasValue {
		return &Leaf{
			condition: condition,
			parent:    parent,
			value:     types.CloneValue(def.Value),
		}, nil
	}

	b := &Branch{condition: condition, parent: parent}
	if err := b.appendDefinitions(def.Children); err != nil {
		return nil, err
	}
	return b, nil
}

func depth(parent *Branch) int {
	d := 0
	for p := parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Leaf is a terminal node carrying a payload value.
type Leaf struct {
	condition *rules.Rule
	parent    *Branch
	value     any
}

func (l *Leaf) Condition() *rules.Rule { return l.condition }
func (l *Leaf) Parent() *Branch        { return l.parent }
func (l *Leaf) Depth() int             { return depth(l.parent) }
func (l *Leaf) Children() []Node       { return nil }

// Value returns the payload. Callers must not mutate it.
func (l *Leaf) Value() any { return l.value }

func (l *Leaf) Evaluate(record any) (any, bool) {
	if !l.condition.Evaluate(record) {
		return nil, false
	}
	return l.value, true
}

func (l *Leaf) match(record any) (*Leaf, bool) {
	if !l.condition.Evaluate(record) {
		return nil, false
	}
	return l, true
}

func (l *Leaf) AppendChild(types.NodeDefinition) (Node, error) {
	return nil, &types.OperationError{Op: "append child", Err: types.ErrLeafChildren}
}

func (l *Leaf) Definition() types.NodeDefinition {
	return types.Leaf(l.condition.Definition(), types.CloneValue(l.value))
}

// Branch is an inner node holding ordered children.
type Branch struct {
	condition *rules.Rule
	parent    *Branch
	children  []Node
}

func (b *Branch) Condition() *rules.Rule { return b.condition }
func (b *Branch) Parent() *Branch        { return b.parent }
func (b *Branch) Depth() int             { return depth(b.parent) }

func (b *Branch) Children() []Node {
	return append([]Node(nil), b.children...)
}

func (b *Branch) Evaluate(record any) (any, bool) {
	leaf, ok := b.match(record)
	if !ok {
		return nil, false
	}
	return leaf.value, true
}

func (b *Branch) match(record any) (*Leaf, bool) {
	if !b.condition.Evaluate(record) {
		return nil, false
	}
	return b.matchChildren(record)
}

// matchChildren returns the first child result that is truthy. A leaf whose
// condition holds but whose value is falsy is skipped like a non-match.
func (b *Branch) matchChildren(record any) (*Leaf, bool) {
	for _, child := range b.children {
		leaf, ok := child.match(record)
		if ok && Truthy(leaf.value) {
			return leaf, true
		}
	}
	return nil, false
}

func (b *Branch) AppendChild(def types.NodeDefinition) (Node, error) {
	child, err := newNode(def, b)
	if err != nil {
		return nil, err
	}
	b.children = append(b.children, child)
	return child, nil
}

func (b *Branch) appendDefinitions(defs []types.NodeDefinition) error {
	b.children = make([]Node, 0, len(defs))
	for i, def := range defs {
		child, err := newNode(def, b)
		if err != nil {
			return types.NewConstructionError(fmt.Sprintf("children[%d]", i), err)
		}
		b.children = append(b.children, child)
	}
	return nil
}

func (b *Branch) Definition() types.NodeDefinition {
	children := make([]types.NodeDefinition, len(b.children))
	for i, child := range b.children {
		children[i] = child.Definition()
	}
	return types.NodeDefinition{Condition: b.condition.Definition(), Children: children}
}
