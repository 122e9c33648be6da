// Package types provides the definition model and errors shared across
// decisiontree components.
//
// Definitions are plain, wire-format-agnostic structs that mirror the JSON
// definition format. The rules and tree packages compile them into
// evaluators; the store and the gRPC layer persist and transport them
// unchanged.
package types

// Resource limits enforced when compiling definitions.
const (
	// MaxPathDepth bounds the number of segments in a rule path.
	// 32 levels covers any realistic record nesting while keeping resolution
	// iterative and cheap.
	MaxPathDepth = 32

	// MaxDefinitionSize caps a serialized definition accepted by the store
	// and the gRPC service.
	MaxDefinitionSize = 4 * 1024 * 1024
)

// PathSegment is one component of a rule path.
// Key is used for object lookup; Index/IsIndex for bracket array indices.
type PathSegment struct {
	Key     string // object key (mutually exclusive with Index)
	Index   int    // array index from bracket notation
	IsIndex bool   // disambiguates Index=0 from unset
}
