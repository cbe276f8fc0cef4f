package schemacompat

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/2bigO/schemacompat/schema"
)

// Dialect identifiers written to the root "$schema" keyword.
const (
	draft07URI   = "http://json-schema.org/draft-07/schema#"
	draft2019URI = "https://json-schema.org/draft/2019-09/schema#"
)

// Render converts n into the given dialect without degrading anything.
// Refinements are runtime-only and never appear in the output.
func Render(n schema.Node, target Target) (*jsonschema.Schema, error) {
	r := renderer{target: target}
	s, err := r.render(n, "/")
	if err != nil {
		return nil, err
	}
	switch target {
	case TargetJSONSchema7:
		s.Version = draft07URI
	case TargetJSONSchema2019:
		s.Version = draft2019URI
	case TargetOpenAPI3:
	default:
		return nil, fmt.Errorf("schemacompat: unknown target %q", target)
	}
	return s, nil
}

type renderer struct {
	target Target
}

func (r renderer) render(n schema.Node, path string) (*jsonschema.Schema, error) {
	switch t := n.(type) {
	case *schema.ObjectNode:
		return r.object(t, path)
	case *schema.ArrayNode:
		return r.array(t, path)
	case *schema.UnionNode:
		return r.union(t, path)
	case *schema.OptionalNode:
		return r.optional(t, path)
	case *schema.StringNode:
		return r.string(t, path)
	case *schema.NumberNode:
		return r.number(t, path)
	case *schema.DateNode:
		return r.date(t, path)
	case *schema.OtherNode:
		return r.other(t, path)
	case nil:
		return nil, &schema.DefinitionError{Path: path, Message: "nil node"}
	default:
		return nil, fmt.Errorf("schemacompat: unknown node type %T", n)
	}
}

func (r renderer) object(n *schema.ObjectNode, path string) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{
		Type:        "object",
		Description: n.Description,
		Properties:  orderedmap.New[string, *jsonschema.Schema](),
	}
	for _, f := range n.Fields {
		child, err := r.render(f.Node, childPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		s.Properties.Set(f.Name, child)

		opt, isOptional := f.Node.(*schema.OptionalNode)
		if !isOptional || opt.Nullable {
			s.Required = append(s.Required, f.Name)
		}
	}
	if n.Closed {
		s.AdditionalProperties = jsonschema.FalseSchema
	}
	return s, nil
}

func (r renderer) array(n *schema.ArrayNode, path string) (*jsonschema.Schema, error) {
	if err := checkLengths(path, n.MinItems, n.MaxItems); err != nil {
		return nil, err
	}
	items, err := r.render(n.Element, childPath(path, "items"))
	if err != nil {
		return nil, err
	}
	s := &jsonschema.Schema{Type: "array", Description: n.Description, Items: items}
	s.MinItems = uintPtr(n.MinItems)
	s.MaxItems = uintPtr(n.MaxItems)
	if n.ExactLength != nil {
		if *n.ExactLength < 0 {
			return nil, rangeError(path, "exact length must not be negative")
		}
		s.MinItems = uintPtr(n.ExactLength)
		s.MaxItems = uintPtr(n.ExactLength)
	}
	return s, nil
}

func (r renderer) union(n *schema.UnionNode, path string) (*jsonschema.Schema, error) {
	if len(n.Options) < 2 {
		return nil, &schema.DefinitionError{Path: path, Message: schema.ErrUnionArity.Error(), Err: schema.ErrUnionArity}
	}
	s := &jsonschema.Schema{Description: n.Description}
	for i, opt := range n.Options {
		o, err := r.render(opt, childPath(path, "anyOf/"+strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		s.AnyOf = append(s.AnyOf, o)
	}
	return s, nil
}

func (r renderer) optional(n *schema.OptionalNode, path string) (*jsonschema.Schema, error) {
	inner, err := r.render(n.Inner, path)
	if err != nil {
		return nil, err
	}
	if n.Description != "" {
		inner.Description = n.Description
	}
	if !n.Nullable {
		return inner, nil
	}
	if r.target == TargetOpenAPI3 {
		setExtra(inner, "nullable", true)
		return inner, nil
	}
	desc := inner.Description
	inner.Description = ""
	return &jsonschema.Schema{
		Description: desc,
		AnyOf:       []*jsonschema.Schema{inner, {Type: "null"}},
	}, nil
}

func (r renderer) string(n *schema.StringNode, path string) (*jsonschema.Schema, error) {
	if err := checkLengths(path, n.MinLength, n.MaxLength); err != nil {
		return nil, err
	}
	s := &jsonschema.Schema{
		Type:        "string",
		Description: n.Description,
		MinLength:   uintPtr(n.MinLength),
		MaxLength:   uintPtr(n.MaxLength),
	}
	switch n.Format {
	case schema.FormatEmail:
		s.Format = "email"
	case schema.FormatURL:
		s.Format = "uri"
	case schema.FormatUUID:
		s.Format = "uuid"
	}
	if n.Pattern != nil {
		s.Pattern = n.Pattern.String()
	}
	return s, nil
}

func (r renderer) number(n *schema.NumberNode, path string) (*jsonschema.Schema, error) {
	if err := checkFinite(path, n); err != nil {
		return nil, err
	}
	lo, hi := n.Gte, n.Lte
	if lo == nil {
		lo = n.Gt
	}
	if hi == nil {
		hi = n.Lt
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, rangeError(path, fmt.Sprintf("minimum %v exceeds maximum %v", *lo, *hi))
	}

	s := &jsonschema.Schema{Type: "number", Description: n.Description}
	if n.IsInt {
		s.Type = "integer"
	}
	if n.Multiple != nil {
		if *n.Multiple <= 0 {
			return nil, rangeError(path, "multipleOf must be positive")
		}
		s.MultipleOf = jsonNumber(*n.Multiple)
	}

	if r.target == TargetOpenAPI3 {
		// OpenAPI 3.0 spells exclusive bounds as booleans next to minimum/maximum.
		switch {
		case n.Gt != nil && (n.Gte == nil || *n.Gt >= *n.Gte):
			s.Minimum = jsonNumber(*n.Gt)
			setExtra(s, "exclusiveMinimum", true)
		case n.Gte != nil:
			s.Minimum = jsonNumber(*n.Gte)
		}
		switch {
		case n.Lt != nil && (n.Lte == nil || *n.Lt <= *n.Lte):
			s.Maximum = jsonNumber(*n.Lt)
			setExtra(s, "exclusiveMaximum", true)
		case n.Lte != nil:
			s.Maximum = jsonNumber(*n.Lte)
		}
		return s, nil
	}

	if n.Gte != nil {
		s.Minimum = jsonNumber(*n.Gte)
	}
	if n.Gt != nil {
		s.ExclusiveMinimum = jsonNumber(*n.Gt)
	}
	if n.Lte != nil {
		s.Maximum = jsonNumber(*n.Lte)
	}
	if n.Lt != nil {
		s.ExclusiveMaximum = jsonNumber(*n.Lt)
	}
	return s, nil
}

func (r renderer) date(n *schema.DateNode, path string) (*jsonschema.Schema, error) {
	if n.MinDate != nil && n.MaxDate != nil && n.MinDate.After(*n.MaxDate) {
		return nil, rangeError(path, "minimum date is after maximum date")
	}
	return &jsonschema.Schema{Type: "string", Format: "date-time", Description: n.Description}, nil
}

func (r renderer) other(n *schema.OtherNode, path string) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Description: n.Description}
	switch n.Type {
	case schema.TypeBoolean:
		s.Type = "boolean"
	case schema.TypeNull:
		if r.target == TargetOpenAPI3 {
			s.Enum = []any{nil}
			setExtra(s, "nullable", true)
		} else {
			s.Type = "null"
		}
	case schema.TypeAny, schema.TypeUnknown:
	case schema.TypeNever, schema.TypeUndefined:
		s.Not = &jsonschema.Schema{}
	case schema.TypeEnum:
		s.Type = "string"
		s.Enum = append([]any(nil), n.Values...)
	case schema.TypeLiteral:
		if len(n.Values) != 1 {
			return nil, &schema.DefinitionError{Path: path, Message: "literal must have exactly one value"}
		}
		if r.target == TargetOpenAPI3 {
			s.Enum = []any{n.Values[0]}
		} else {
			s.Const = n.Values[0]
		}
	case schema.TypeTuple:
		s.Type = "array"
		for i, item := range n.Items {
			is, err := r.render(item, childPath(path, "prefixItems/"+strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			s.PrefixItems = append(s.PrefixItems, is)
		}
		size := uint64(len(n.Items))
		s.MinItems = &size
		s.MaxItems = &size
	case schema.TypeRecord:
		s.Type = "object"
		if n.Value != nil {
			vs, err := r.render(n.Value, childPath(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = vs
		}
	case schema.TypeIntersection:
		for i, m := range n.Items {
			ms, err := r.render(m, childPath(path, "allOf/"+strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			s.AllOf = append(s.AllOf, ms)
		}
	default:
		return nil, &schema.DefinitionError{Path: path, Message: fmt.Sprintf("unknown type %q", n.Type)}
	}
	return s, nil
}

func checkLengths(path string, lo, hi *int) error {
	if lo != nil && *lo < 0 {
		return rangeError(path, "minimum length must not be negative")
	}
	if hi != nil && *hi < 0 {
		return rangeError(path, "maximum length must not be negative")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return rangeError(path, fmt.Sprintf("minimum length %d exceeds maximum length %d", *lo, *hi))
	}
	return nil
}

// checkFinite rejects NaN and infinite bounds, which have no JSON spelling.
func checkFinite(path string, n *schema.NumberNode) error {
	bounds := []struct {
		name string
		v    *float64
	}{
		{"minimum", n.Gte},
		{"exclusive minimum", n.Gt},
		{"maximum", n.Lte},
		{"exclusive maximum", n.Lt},
		{"multipleOf", n.Multiple},
	}
	for _, b := range bounds {
		if b.v != nil && (math.IsInf(*b.v, 0) || math.IsNaN(*b.v)) {
			return rangeError(path, fmt.Sprintf("%s must be finite, got %v", b.name, *b.v))
		}
	}
	return nil
}

func rangeError(path, msg string) error {
	return &schema.DefinitionError{Path: path, Message: msg, Err: schema.ErrInvalidRange}
}

func setExtra(s *jsonschema.Schema, key string, value any) {
	if s.Extras == nil {
		s.Extras = map[string]any{}
	}
	s.Extras[key] = value
}

func jsonNumber(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

func uintPtr(v *int) *uint64 {
	if v == nil || *v < 0 {
		return nil
	}
	u := uint64(*v)
	return &u
}

func childPath(path, segment string) string {
	if path == "/" || path == "" {
		return "/" + segment
	}
	return path + "/" + segment
}
