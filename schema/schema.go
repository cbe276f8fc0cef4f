package schema

import (
	"errors"
	"fmt"
	"slices"
)

// Kind is the coarse classification of a schema node. Every handler in a
// compatibility layer is keyed by Kind.
type Kind int

const (
	KindOther Kind = iota
	KindObject
	KindArray
	KindUnion
	KindOptional
	KindString
	KindNumber
	KindDate
)

var kindNames = [...]string{
	KindOther:    "other",
	KindObject:   "object",
	KindArray:    "array",
	KindUnion:    "union",
	KindOptional: "optional",
	KindString:   "string",
	KindNumber:   "number",
	KindDate:     "date",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// TypeName is the fine-grained type of a node. For the seven structured kinds
// it matches Kind.String(); nodes of KindOther carry one of the remaining names.
type TypeName string

const (
	TypeObject       TypeName = "object"
	TypeArray        TypeName = "array"
	TypeUnion        TypeName = "union"
	TypeOptional     TypeName = "optional"
	TypeString       TypeName = "string"
	TypeNumber       TypeName = "number"
	TypeDate         TypeName = "date"
	TypeBoolean      TypeName = "boolean"
	TypeNull         TypeName = "null"
	TypeUndefined    TypeName = "undefined"
	TypeAny          TypeName = "any"
	TypeUnknown      TypeName = "unknown"
	TypeNever        TypeName = "never"
	TypeEnum         TypeName = "enum"
	TypeLiteral      TypeName = "literal"
	TypeTuple        TypeName = "tuple"
	TypeRecord       TypeName = "record"
	TypeIntersection TypeName = "intersection"
)

// AllTypes lists every type name a node can report.
var AllTypes = []TypeName{
	TypeObject, TypeArray, TypeUnion, TypeOptional, TypeString, TypeNumber, TypeDate,
	TypeBoolean, TypeNull, TypeUndefined, TypeAny, TypeUnknown, TypeNever,
	TypeEnum, TypeLiteral, TypeTuple, TypeRecord, TypeIntersection,
}

// Node is one immutable element of a schema tree.
//
// The set of implementations is closed: ObjectNode, ArrayNode, UnionNode,
// OptionalNode, StringNode, NumberNode, DateNode and OtherNode. Builder methods
// never modify the receiver; they return a changed copy.
type Node interface {
	Kind() Kind
	TypeName() TypeName
	Metadata() Meta

	sealed()
}

// Meta holds the properties shared by every node.
type Meta struct {
	// Description is free text shown to the model. Empty means absent.
	Description string

	// Refinements are runtime-only checks. They are enforced by Validate but
	// have no structural rendering.
	Refinements []Refinement
}

// Metadata returns the shared node properties.
func (m Meta) Metadata() Meta { return m }

func (m Meta) withRefinement(r Refinement) Meta {
	m.Refinements = append(slices.Clip(m.Refinements), r)
	return m
}

// Refinement is a named runtime check. Check receives the value after the
// node's structural checks passed and returns nil when it is acceptable.
// Returning Issues keeps their codes; any other error becomes a custom issue.
type Refinement struct {
	Name  string
	Check func(v any) error
}

// Sentinel errors for schema construction.
var (
	// ErrUnionArity is returned when a union has fewer than two options.
	ErrUnionArity = errors.New("Union must have at least 2 options")

	// ErrInvalidRange is returned when a lower bound exceeds its upper bound
	// or a length bound is negative.
	ErrInvalidRange = errors.New("schema: invalid range")
)

// DefinitionError reports an inconsistent schema definition.
type DefinitionError struct {
	Path    string // JSON pointer of the offending node
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *DefinitionError) Error() string {
	if e.Path != "" && e.Path != "/" {
		return fmt.Sprintf("schema: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("schema: %s", e.Message)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// ptr returns a pointer to the value.
func ptr[T any](v T) *T {
	return &v
}
