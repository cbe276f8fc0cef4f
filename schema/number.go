package schema

// NumberNode describes a numeric value.
type NumberNode struct {
	Meta

	Gte      *float64 // inclusive lower bound
	Lte      *float64 // inclusive upper bound
	Gt       *float64 // exclusive lower bound
	Lt       *float64 // exclusive upper bound
	Multiple *float64 // value must be a multiple of this step

	IsInt    bool
	IsFinite bool
}

// Number creates a number node.
func Number() *NumberNode {
	return &NumberNode{}
}

// Int creates an integer number node.
func Int() *NumberNode {
	return Number().Int()
}

func (*NumberNode) Kind() Kind         { return KindNumber }
func (*NumberNode) TypeName() TypeName { return TypeNumber }
func (*NumberNode) sealed()            {}

// Describe sets the description.
func (n *NumberNode) Describe(description string) *NumberNode {
	c := *n
	c.Description = description
	return &c
}

// Min sets the inclusive minimum.
func (n *NumberNode) Min(v float64) *NumberNode {
	c := *n
	c.Gte = ptr(v)
	return &c
}

// Max sets the inclusive maximum.
func (n *NumberNode) Max(v float64) *NumberNode {
	c := *n
	c.Lte = ptr(v)
	return &c
}

// ExclusiveMin sets the exclusive minimum.
func (n *NumberNode) ExclusiveMin(v float64) *NumberNode {
	c := *n
	c.Gt = ptr(v)
	return &c
}

// ExclusiveMax sets the exclusive maximum.
func (n *NumberNode) ExclusiveMax(v float64) *NumberNode {
	c := *n
	c.Lt = ptr(v)
	return &c
}

// MultipleOf requires the value to be a multiple of step.
func (n *NumberNode) MultipleOf(step float64) *NumberNode {
	c := *n
	c.Multiple = ptr(step)
	return &c
}

// Int requires an integral value.
func (n *NumberNode) Int() *NumberNode {
	c := *n
	c.IsInt = true
	return &c
}

// Finite rejects NaN and infinities.
func (n *NumberNode) Finite() *NumberNode {
	c := *n
	c.IsFinite = true
	return &c
}

// Refine adds a runtime-only check.
func (n *NumberNode) Refine(name string, check func(v any) error) *NumberNode {
	c := *n
	c.Meta = c.withRefinement(Refinement{Name: name, Check: check})
	return &c
}
