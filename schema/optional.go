package schema

// OptionalNode accepts an absent value or a value matching Inner.
//
// Go has no undefined, so a nil value counts as absent wherever an optional
// node is checked, including object properties that are present with nil.
type OptionalNode struct {
	Meta

	Inner Node

	// Nullable asks renderers to keep the property required but allow null.
	// Targets that reject optional properties use it; validation is unchanged.
	Nullable bool
}

// Optional wraps inner so that absence is accepted.
func Optional(inner Node) *OptionalNode {
	return &OptionalNode{Inner: inner}
}

func (*OptionalNode) Kind() Kind         { return KindOptional }
func (*OptionalNode) TypeName() TypeName { return TypeOptional }
func (*OptionalNode) sealed()            {}

// Describe sets the description.
func (n *OptionalNode) Describe(description string) *OptionalNode {
	c := *n
	c.Description = description
	return &c
}

// AsNullable marks the node to be rendered as a required, nullable property.
func (n *OptionalNode) AsNullable() *OptionalNode {
	c := *n
	c.Nullable = true
	return &c
}

// Unwrap returns the innermost non-optional node.
func (n *OptionalNode) Unwrap() Node {
	var inner Node = n
	for {
		o, ok := inner.(*OptionalNode)
		if !ok {
			return inner
		}
		inner = o.Inner
	}
}
