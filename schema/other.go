package schema

import "slices"

// OtherNode covers every type without a dedicated compatibility handler:
// boolean, null, undefined, any, unknown, never, enum, literal, tuple, record
// and intersection.
type OtherNode struct {
	Meta

	Type TypeName

	// Values holds enum members, or the single literal value.
	Values []any

	// Items holds tuple elements or intersection members.
	Items []Node

	// Value is the value schema of a record.
	Value Node
}

func (*OtherNode) Kind() Kind           { return KindOther }
func (n *OtherNode) TypeName() TypeName { return n.Type }
func (*OtherNode) sealed()              {}

// Bool creates a boolean node.
func Bool() *OtherNode { return &OtherNode{Type: TypeBoolean} }

// Null creates a node that only accepts null.
func Null() *OtherNode { return &OtherNode{Type: TypeNull} }

// Undefined creates a node that only accepts an absent value.
func Undefined() *OtherNode { return &OtherNode{Type: TypeUndefined} }

// Any creates a node that accepts every value.
func Any() *OtherNode { return &OtherNode{Type: TypeAny} }

// Unknown creates a node that accepts every value.
func Unknown() *OtherNode { return &OtherNode{Type: TypeUnknown} }

// Never creates a node that rejects every value.
func Never() *OtherNode { return &OtherNode{Type: TypeNever} }

// Enum creates a node accepting one of the given strings.
func Enum(values ...string) *OtherNode {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return &OtherNode{Type: TypeEnum, Values: vs}
}

// Literal creates a node accepting exactly v.
func Literal(v any) *OtherNode {
	return &OtherNode{Type: TypeLiteral, Values: []any{v}}
}

// Tuple creates a fixed-length array node with per-position schemas.
func Tuple(items ...Node) *OtherNode {
	return &OtherNode{Type: TypeTuple, Items: slices.Clone(items)}
}

// Record creates an object node with arbitrary keys and uniform values.
func Record(value Node) *OtherNode {
	return &OtherNode{Type: TypeRecord, Value: value}
}

// Intersection creates a node whose value must satisfy every member.
func Intersection(members ...Node) *OtherNode {
	return &OtherNode{Type: TypeIntersection, Items: slices.Clone(members)}
}

// Describe sets the description.
func (n *OtherNode) Describe(description string) *OtherNode {
	c := *n
	c.Description = description
	return &c
}

// Refine adds a runtime-only check.
func (n *OtherNode) Refine(name string, check func(v any) error) *OtherNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}
