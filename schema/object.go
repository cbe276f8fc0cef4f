package schema

import "slices"

// Field is a named property of an object node.
type Field struct {
	Name string
	Node Node
}

// Prop creates a Field.
func Prop(name string, node Node) Field {
	return Field{Name: name, Node: node}
}

// ObjectNode describes an object with an ordered set of properties.
type ObjectNode struct {
	Meta

	// Fields keeps declaration order. Renderers and validators preserve it.
	Fields []Field

	// Closed rejects properties that are not declared in Fields.
	Closed bool
}

// Object creates an open object node.
func Object(fields ...Field) *ObjectNode {
	return &ObjectNode{Fields: slices.Clone(fields)}
}

func (*ObjectNode) Kind() Kind         { return KindObject }
func (*ObjectNode) TypeName() TypeName { return TypeObject }
func (*ObjectNode) sealed()            {}

// Describe sets the description.
func (n *ObjectNode) Describe(description string) *ObjectNode {
	c := *n
	c.Description = description
	return &c
}

// Strict rejects undeclared properties.
func (n *ObjectNode) Strict() *ObjectNode {
	c := *n
	c.Closed = true
	return &c
}

// Passthrough accepts undeclared properties.
func (n *ObjectNode) Passthrough() *ObjectNode {
	c := *n
	c.Closed = false
	return &c
}

// Extend returns a copy with additional fields. A field whose name already
// exists replaces the old definition in place.
func (n *ObjectNode) Extend(fields ...Field) *ObjectNode {
	c := *n
	c.Fields = slices.Clone(n.Fields)
	for _, f := range fields {
		if i := c.index(f.Name); i >= 0 {
			c.Fields[i] = f
			continue
		}
		c.Fields = append(c.Fields, f)
	}
	return &c
}

// Refine adds a runtime-only check.
func (n *ObjectNode) Refine(name string, check func(v any) error) *ObjectNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}

// Field returns the node declared for name.
func (n *ObjectNode) Field(name string) (Node, bool) {
	if i := n.index(name); i >= 0 {
		return n.Fields[i].Node, true
	}
	return nil, false
}

// Names returns property names in declaration order.
func (n *ObjectNode) Names() []string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
	}
	return names
}

func (n *ObjectNode) index(name string) int {
	for i, f := range n.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
