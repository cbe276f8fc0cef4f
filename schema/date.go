package schema

import "time"

// DateNode describes a point in time.
type DateNode struct {
	Meta

	MinDate *time.Time
	MaxDate *time.Time
}

// Date creates a date node.
func Date() *DateNode {
	return &DateNode{}
}

func (*DateNode) Kind() Kind         { return KindDate }
func (*DateNode) TypeName() TypeName { return TypeDate }
func (*DateNode) sealed()            {}

// Describe sets the description.
func (n *DateNode) Describe(description string) *DateNode {
	c := *n
	c.Description = description
	return &c
}

// Min rejects dates before t.
func (n *DateNode) Min(t time.Time) *DateNode {
	c := *n
	c.MinDate = ptr(t)
	return &c
}

// Max rejects dates after t.
func (n *DateNode) Max(t time.Time) *DateNode {
	c := *n
	c.MaxDate = ptr(t)
	return &c
}

// Refine adds a runtime-only check.
func (n *DateNode) Refine(name string, check func(v any) error) *DateNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}
