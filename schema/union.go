package schema

import "slices"

// UnionNode accepts a value matching any of its options. Options are tried in
// order.
type UnionNode struct {
	Meta

	Options []Node
}

// Union creates a union node. It fails with ErrUnionArity when fewer than two
// options are given.
func Union(options ...Node) (*UnionNode, error) {
	if len(options) < 2 {
		return nil, ErrUnionArity
	}
	return &UnionNode{Options: slices.Clone(options)}, nil
}

// MustUnion is like Union but panics on error.
func MustUnion(options ...Node) *UnionNode {
	u, err := Union(options...)
	if err != nil {
		panic(err)
	}
	return u
}

func (*UnionNode) Kind() Kind         { return KindUnion }
func (*UnionNode) TypeName() TypeName { return TypeUnion }
func (*UnionNode) sealed()            {}

// Describe sets the description.
func (n *UnionNode) Describe(description string) *UnionNode {
	c := *n
	c.Description = description
	return &c
}

// Refine adds a runtime-only check.
func (n *UnionNode) Refine(name string, check func(v any) error) *UnionNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}
