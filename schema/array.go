package schema

// ArrayNode describes a homogeneous list.
type ArrayNode struct {
	Meta

	Element     Node
	MinItems    *int
	MaxItems    *int
	ExactLength *int
}

// Array creates an array node with the given element schema.
func Array(element Node) *ArrayNode {
	return &ArrayNode{Element: element}
}

func (*ArrayNode) Kind() Kind         { return KindArray }
func (*ArrayNode) TypeName() TypeName { return TypeArray }
func (*ArrayNode) sealed()            {}

// Describe sets the description.
func (n *ArrayNode) Describe(description string) *ArrayNode {
	c := *n
	c.Description = description
	return &c
}

// Min sets the minimum number of items.
func (n *ArrayNode) Min(items int) *ArrayNode {
	c := *n
	c.MinItems = ptr(items)
	return &c
}

// Max sets the maximum number of items.
func (n *ArrayNode) Max(items int) *ArrayNode {
	c := *n
	c.MaxItems = ptr(items)
	return &c
}

// Length requires exactly the given number of items.
func (n *ArrayNode) Length(items int) *ArrayNode {
	c := *n
	c.ExactLength = ptr(items)
	return &c
}

// Refine adds a runtime-only check.
func (n *ArrayNode) Refine(name string, check func(v any) error) *ArrayNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}
