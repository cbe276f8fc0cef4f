package schemacompat

import (
	"slices"
	"time"

	"github.com/2bigO/schemacompat/schema"
)

// ArrayCheck names an array constraint a handler may degrade.
type ArrayCheck string

// Array constraints.
const (
	ArrayMin    ArrayCheck = "min"
	ArrayMax    ArrayCheck = "max"
	ArrayLength ArrayCheck = "length"
)

// AllArrayChecks lists every array constraint.
var AllArrayChecks = []ArrayCheck{ArrayMin, ArrayMax, ArrayLength}

// StringCheck names a string constraint a handler may degrade.
type StringCheck string

// String constraints.
const (
	StringMin   StringCheck = "min"
	StringMax   StringCheck = "max"
	StringEmail StringCheck = "email"
	StringURL   StringCheck = "url"
	StringUUID  StringCheck = "uuid"
	StringRegex StringCheck = "regex"
)

// AllStringChecks lists every string constraint.
var AllStringChecks = []StringCheck{StringMin, StringMax, StringEmail, StringURL, StringUUID, StringRegex}

// NumberCheck names a numeric constraint a handler may degrade.
type NumberCheck string

// Number constraints. Integer and finiteness flags are never degraded.
const (
	NumberGte        NumberCheck = "gte"
	NumberLte        NumberCheck = "lte"
	NumberGt         NumberCheck = "gt"
	NumberLt         NumberCheck = "lt"
	NumberMultipleOf NumberCheck = "multipleOf"
)

// AllNumberChecks lists every numeric constraint.
var AllNumberChecks = []NumberCheck{NumberGte, NumberLte, NumberGt, NumberLt, NumberMultipleOf}

// isoMillis matches the timestamp layout models most often produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// DefaultObjectHandler dispatches every property through the layer, keeping
// property order, the closed flag and the description.
func (l *Layer) DefaultObjectHandler(n *schema.ObjectNode) (schema.Node, error) {
	out := &schema.ObjectNode{Meta: n.Meta, Closed: n.Closed, Fields: make([]schema.Field, len(n.Fields))}
	for i, f := range n.Fields {
		child, err := l.Process(f.Node)
		if err != nil {
			return nil, err
		}
		out.Fields[i] = schema.Prop(f.Name, child)
	}
	return out, nil
}

// DefaultArrayHandler degrades every array constraint.
func (l *Layer) DefaultArrayHandler(n *schema.ArrayNode) (schema.Node, error) {
	return l.ArrayHandler(n, AllArrayChecks...)
}

// ArrayHandler dispatches the element and folds the listed constraints into
// the description. Constraints not listed stay native.
func (l *Layer) ArrayHandler(n *schema.ArrayNode, checks ...ArrayCheck) (schema.Node, error) {
	elem, err := l.Process(n.Element)
	if err != nil {
		return nil, err
	}

	out := &schema.ArrayNode{Meta: n.Meta, Element: elem}
	c := NewConstraints()
	if n.MinItems != nil {
		if slices.Contains(checks, ArrayMin) {
			c.Set("minLength", *n.MinItems)
		} else {
			out.MinItems = n.MinItems
		}
	}
	if n.MaxItems != nil {
		if slices.Contains(checks, ArrayMax) {
			c.Set("maxLength", *n.MaxItems)
		} else {
			out.MaxItems = n.MaxItems
		}
	}
	if n.ExactLength != nil {
		if slices.Contains(checks, ArrayLength) {
			c.Set("exactLength", *n.ExactLength)
		} else {
			out.ExactLength = n.ExactLength
		}
	}

	out.Description = MergeDescription(n.Description, c)
	l.logDegraded(n, c)
	return out, nil
}

// DefaultUnionHandler dispatches every option in order.
func (l *Layer) DefaultUnionHandler(n *schema.UnionNode) (schema.Node, error) {
	if len(n.Options) < 2 {
		return nil, schema.ErrUnionArity
	}
	out := &schema.UnionNode{Meta: n.Meta, Options: make([]schema.Node, len(n.Options))}
	for i, opt := range n.Options {
		p, err := l.Process(opt)
		if err != nil {
			return nil, err
		}
		out.Options[i] = p
	}
	return out, nil
}

// DefaultOptionalHandler rewrites the inner node whatever its type.
func (l *Layer) DefaultOptionalHandler(n *schema.OptionalNode) (schema.Node, error) {
	return l.OptionalHandler(n, schema.AllTypes...)
}

// OptionalHandler rewrites the inner node when its type is listed. Otherwise
// it returns n itself, so an unsupported inner node is never half rewritten.
func (l *Layer) OptionalHandler(n *schema.OptionalNode, types ...schema.TypeName) (schema.Node, error) {
	if !slices.Contains(types, schema.TypeOf(n.Inner)) {
		return n, nil
	}
	inner, err := l.Process(n.Inner)
	if err != nil {
		return nil, err
	}
	return &schema.OptionalNode{Meta: n.Meta, Inner: inner, Nullable: n.Nullable}, nil
}

// DefaultStringHandler degrades every string constraint.
func (l *Layer) DefaultStringHandler(n *schema.StringNode) (schema.Node, error) {
	return l.StringHandler(n, AllStringChecks...)
}

// StringHandler folds the listed constraints into the description. When
// nothing is folded n is returned unchanged.
func (l *Layer) StringHandler(n *schema.StringNode, checks ...StringCheck) (schema.Node, error) {
	out := *n
	c := NewConstraints()
	if n.MinLength != nil && slices.Contains(checks, StringMin) {
		c.Set("minLength", *n.MinLength)
		out.MinLength = nil
	}
	if n.MaxLength != nil && slices.Contains(checks, StringMax) {
		c.Set("maxLength", *n.MaxLength)
		out.MaxLength = nil
	}
	switch n.Format {
	case schema.FormatEmail:
		if slices.Contains(checks, StringEmail) {
			c.Set("email", true)
			out.Format = schema.FormatNone
		}
	case schema.FormatURL:
		if slices.Contains(checks, StringURL) {
			c.Set("url", true)
			out.Format = schema.FormatNone
		}
	case schema.FormatUUID:
		if slices.Contains(checks, StringUUID) {
			c.Set("uuid", true)
			out.Format = schema.FormatNone
		}
	}
	if n.Pattern != nil && slices.Contains(checks, StringRegex) {
		c.Set("regex", map[string]any{"pattern": n.Pattern.String()})
		out.Pattern = nil
	}

	if c.Len() == 0 {
		return n, nil
	}
	out.Description = MergeDescription(n.Description, c)
	l.logDegraded(n, c)
	return &out, nil
}

// DefaultNumberHandler degrades every numeric bound.
func (l *Layer) DefaultNumberHandler(n *schema.NumberNode) (schema.Node, error) {
	return l.NumberHandler(n, AllNumberChecks...)
}

// NumberHandler folds the listed bounds into the description. The integer
// and finite flags always stay native. A NaN or infinite bound is an
// ErrInvalidRange definition error.
func (l *Layer) NumberHandler(n *schema.NumberNode, checks ...NumberCheck) (schema.Node, error) {
	if err := checkFinite("", n); err != nil {
		return nil, err
	}
	out := *n
	c := NewConstraints()
	if n.Gte != nil && slices.Contains(checks, NumberGte) {
		c.Set("gte", *n.Gte)
		out.Gte = nil
	}
	if n.Gt != nil && slices.Contains(checks, NumberGt) {
		c.Set("gt", *n.Gt)
		out.Gt = nil
	}
	if n.Lte != nil && slices.Contains(checks, NumberLte) {
		c.Set("lte", *n.Lte)
		out.Lte = nil
	}
	if n.Lt != nil && slices.Contains(checks, NumberLt) {
		c.Set("lt", *n.Lt)
		out.Lt = nil
	}
	if n.Multiple != nil && slices.Contains(checks, NumberMultipleOf) {
		c.Set("multipleOf", *n.Multiple)
		out.Multiple = nil
	}

	if c.Len() == 0 {
		return n, nil
	}
	out.Description = MergeDescription(n.Description, c)
	l.logDegraded(n, c)
	return &out, nil
}

// DefaultDateHandler replaces a date with a string. The bounds and the
// date-time format are folded into the description and kept as runtime
// refinements on the returned string node; none of them is rendered natively.
func (l *Layer) DefaultDateHandler(n *schema.DateNode) (schema.Node, error) {
	c := NewConstraints()
	if n.MinDate != nil {
		c.Set("minDate", n.MinDate.UTC().Format(isoMillis))
	}
	if n.MaxDate != nil {
		c.Set("maxDate", n.MaxDate.UTC().Format(isoMillis))
	}
	c.Set("dateFormat", "date-time")

	out := schema.String().
		Describe(MergeDescription(n.Description, c)).
		Refine("date-time", dateCheck(n))
	l.logDegraded(n, c)
	return out, nil
}

// dateCheck validates a date-time string against the bounds and refinements
// of the original date node.
func dateCheck(n *schema.DateNode) func(v any) error {
	return func(v any) error {
		s, _ := v.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return schema.Issue{Code: schema.CodeInvalidFormat, Message: "Invalid date-time string",
				Params: map[string]any{"format": "date-time"}}
		}
		if n.MinDate != nil && t.Before(*n.MinDate) {
			return schema.Issue{Code: schema.CodeTooSmall,
				Message: "Date must be greater than or equal to " + n.MinDate.UTC().Format(isoMillis),
				Params:  map[string]any{"minimum": n.MinDate.UTC().Format(isoMillis)}}
		}
		if n.MaxDate != nil && t.After(*n.MaxDate) {
			return schema.Issue{Code: schema.CodeTooBig,
				Message: "Date must be smaller than or equal to " + n.MaxDate.UTC().Format(isoMillis),
				Params:  map[string]any{"maximum": n.MaxDate.UTC().Format(isoMillis)}}
		}
		var iss schema.Issues
		for _, r := range n.Refinements {
			if r.Check == nil {
				continue
			}
			err := r.Check(t)
			if err == nil {
				continue
			}
			found, ok := schema.AsIssues(err)
			if !ok {
				found = schema.Issues{{Code: schema.CodeCustom, Message: err.Error()}}
			}
			for _, it := range found {
				if it.Rule == "" {
					it.Rule = r.Name
				}
				iss = append(iss, it)
			}
		}
		if len(iss) == 0 {
			return nil
		}
		return iss
	}
}

// DefaultUnsupportedHandler refuses the layer's configured unsupported types.
func (l *Layer) DefaultUnsupportedHandler(n *schema.OtherNode) (schema.Node, error) {
	return l.UnsupportedHandler(n, l.unsupported...)
}

// UnsupportedHandler fails with an *UnsupportedTypeError when the node type
// is listed. With an empty list every node passes through unchanged.
func (l *Layer) UnsupportedHandler(n *schema.OtherNode, failOn ...schema.TypeName) (schema.Node, error) {
	if slices.Contains(failOn, n.Type) {
		return nil, &UnsupportedTypeError{ModelID: l.model.ID, Type: n.Type}
	}
	return n, nil
}
