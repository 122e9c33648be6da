package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for definition compilation and tree operations.
var (
	// ErrUnknownOperator indicates an operator name outside the closed set.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrMissingPath indicates a comparison rule without a path.
	ErrMissingPath = errors.New("comparison rule requires a path")

	// ErrEmptyCompound indicates an and/or rule with no child rules.
	ErrEmptyCompound = errors.New("compound rule has no child rules")

	// ErrAmbiguousRule indicates a rule mixing and/or keys with comparison keys,
	// or carrying both and and or.
	ErrAmbiguousRule = errors.New("rule mixes compound and comparison keys")

	// ErrInvalidPath indicates a path that cannot be parsed into segments.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathTooDeep indicates a path exceeds MaxPathDepth.
	ErrPathTooDeep = errors.New("path exceeds maximum depth")

	// ErrLeafChildren indicates an attempt to add children to a leaf node.
	ErrLeafChildren = errors.New("leaf nodes cannot have children")

	// ErrTreeNotFound indicates no stored tree has the requested name.
	ErrTreeNotFound = errors.New("tree not found")

	// ErrDefinitionTooLarge indicates a serialized definition exceeds MaxDefinitionSize.
	ErrDefinitionTooLarge = errors.New("definition exceeds maximum size")
)

// ConstructionError reports a structurally invalid definition.
// Location points at the offending element, e.g. "children[2].condition.and[0]".
type ConstructionError struct {
	Location string
	Err      error
}

func (e *ConstructionError) Error() string {
	if e.Location == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// NewConstructionError wraps err with the location of the element being built.
// If err is already a ConstructionError, location is prepended to its own.
func NewConstructionError(location string, err error) error {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return &ConstructionError{Location: joinLocation(location, ce.Location), Err: ce.Err}
	}
	return &ConstructionError{Location: location, Err: err}
}

func joinLocation(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	case inner[0] == '[':
		return outer + inner
	default:
		return outer + "." + inner
	}
}

// OperationError reports a mutation the target node does not support.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
