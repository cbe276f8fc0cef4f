// Package schemafile loads schema trees from YAML or JSON documents.
//
// Documents use the JSON Schema vocabulary: type, properties, required,
// additionalProperties, items, prefixItems, enum, const, anyOf, oneOf, allOf,
// nullable, format and the usual bounds. Property order is kept as written.
// Runtime-only checks are declared under x-refine as CEL expressions over a
// single variable named value:
//
//	type: object
//	properties:
//	  start: {type: string, format: date-time}
//	  end: {type: string, format: date-time}
//	x-refine:
//	  - name: ordered
//	    rule: 'has(value.start) && has(value.end) ? value.start < value.end : true'
//	    message: start must be before end
package schemafile

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/2bigO/schemacompat/schema"
)

// ParseError reports a problem in a schema document.
type ParseError struct {
	Path    string // JSON pointer to the offending schema
	Line    int    // 1-based source line, 0 when unknown
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("schemafile: %s (line %d): %s", e.Path, e.Line, msg)
	}
	return fmt.Sprintf("schemafile: %s: %s", e.Path, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile reads and parses the schema document at path.
func ParseFile(path string) (schema.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a YAML or JSON schema document.
func Parse(data []byte) (schema.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: "/", Message: "invalid document", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{Path: "/", Message: "empty document"}
	}
	return parseNode(doc.Content[0], "/")
}

type entry struct {
	key   string
	value *yaml.Node
}

// mapping is a decoded YAML mapping that remembers key order.
type mapping struct {
	node    *yaml.Node
	entries []entry
	index   map[string]*yaml.Node
}

func newMapping(n *yaml.Node, path string) (*mapping, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, path, "expected a mapping")
	}
	m := &mapping{node: n, index: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if _, dup := m.index[k.Value]; dup {
			return nil, errorAt(k, path, fmt.Sprintf("duplicate key %q", k.Value))
		}
		m.entries = append(m.entries, entry{key: k.Value, value: v})
		m.index[k.Value] = v
	}
	return m, nil
}

func (m *mapping) get(key string) (*yaml.Node, bool) {
	v, ok := m.index[key]
	return v, ok
}

func errorAt(n *yaml.Node, path, msg string) *ParseError {
	return &ParseError{Path: path, Line: n.Line, Message: msg}
}

func wrapAt(n *yaml.Node, path, msg string, err error) *ParseError {
	return &ParseError{Path: path, Line: n.Line, Message: msg, Err: err}
}

func childPath(path, segment string) string {
	if path == "/" {
		return "/" + segment
	}
	return path + "/" + segment
}

func parseNode(y *yaml.Node, path string) (schema.Node, error) {
	if y.Kind == yaml.ScalarNode && y.Tag == "!!bool" {
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, wrapAt(y, path, "invalid boolean schema", err)
		}
		if b {
			return schema.Any(), nil
		}
		return schema.Never(), nil
	}

	m, err := newMapping(y, path)
	if err != nil {
		return nil, err
	}

	nullable, err := optionalBool(m, "nullable", path)
	if err != nil {
		return nil, err
	}

	n, typeNullable, err := parseBase(m, path)
	if err != nil {
		return nil, err
	}
	nullable = nullable || typeNullable

	if v, ok := m.get("description"); ok {
		n = describe(n, v.Value)
	}
	if v, ok := m.get("x-refine"); ok {
		if n, err = parseRefinements(n, v, childPath(path, "x-refine")); err != nil {
			return nil, err
		}
	}
	if nullable && !schema.IsOptional(n) {
		n = schema.Optional(n).AsNullable()
	}
	return n, nil
}

// parseBase builds the node without description, refinements or nullability.
// The second result reports a null member in type or enum.
func parseBase(m *mapping, path string) (schema.Node, bool, error) {
	if v, ok := m.get("const"); ok {
		val, err := scalarValue(v, childPath(path, "const"))
		if err != nil {
			return nil, false, err
		}
		return schema.Literal(val), false, nil
	}
	if v, ok := m.get("enum"); ok {
		return parseEnum(v, childPath(path, "enum"))
	}
	if v, ok := m.get("anyOf"); ok {
		n, err := parseUnion(v, childPath(path, "anyOf"))
		return n, false, err
	}
	if v, ok := m.get("oneOf"); ok {
		n, err := parseUnion(v, childPath(path, "oneOf"))
		return n, false, err
	}
	if v, ok := m.get("allOf"); ok {
		members, err := parseList(v, childPath(path, "allOf"))
		if err != nil {
			return nil, false, err
		}
		return schema.Intersection(members...), false, nil
	}
	if v, ok := m.get("not"); ok {
		if v.Kind != yaml.MappingNode || len(v.Content) != 0 {
			return nil, false, errorAt(v, childPath(path, "not"), "only the empty schema is supported")
		}
		return schema.Never(), false, nil
	}

	typ, nullable, err := parseType(m, path)
	if err != nil {
		return nil, false, err
	}

	var n schema.Node
	switch typ {
	case "object":
		n, err = parseObject(m, path)
	case "array":
		n, err = parseArray(m, path)
	case "string":
		n, err = parseString(m, path)
	case "number", "integer":
		n, err = parseNumber(m, path, typ == "integer")
	case "boolean":
		n = schema.Bool()
	case "null":
		n = schema.Null()
	case "":
		n = schema.Any()
	default:
		return nil, false, errorAt(m.node, childPath(path, "type"), fmt.Sprintf("unknown type %q", typ))
	}
	return n, nullable, err
}

// parseType reads the type keyword. A list of two types where one is null
// yields the other with nullable set. Without a type, a mapping with
// properties is an object.
func parseType(m *mapping, path string) (string, bool, error) {
	v, ok := m.get("type")
	if !ok {
		if _, hasProps := m.get("properties"); hasProps {
			return "object", false, nil
		}
		return "", false, nil
	}
	switch v.Kind {
	case yaml.ScalarNode:
		return v.Value, false, nil
	case yaml.SequenceNode:
		var types []string
		if err := v.Decode(&types); err != nil {
			return "", false, wrapAt(v, childPath(path, "type"), "invalid type list", err)
		}
		nullable := slices.Contains(types, "null")
		types = slices.DeleteFunc(types, func(s string) bool { return s == "null" })
		switch len(types) {
		case 0:
			return "null", false, nil
		case 1:
			return types[0], nullable, nil
		}
	}
	return "", false, errorAt(v, childPath(path, "type"), "type must be a name or a name plus null")
}

func parseObject(m *mapping, path string) (schema.Node, error) {
	required := map[string]bool{}
	if v, ok := m.get("required"); ok {
		var names []string
		if err := v.Decode(&names); err != nil {
			return nil, wrapAt(v, childPath(path, "required"), "required must be a list of names", err)
		}
		for _, name := range names {
			required[name] = true
		}
	}

	var fields []schema.Field
	if v, ok := m.get("properties"); ok {
		propsPath := childPath(path, "properties")
		props, err := newMapping(v, propsPath)
		if err != nil {
			return nil, err
		}
		for _, e := range props.entries {
			child, err := parseNode(e.value, childPath(propsPath, e.key))
			if err != nil {
				return nil, err
			}
			if !required[e.key] {
				// A nullable property that is not required stays optional
				// around the nullable node, so it may be omitted or null.
				if opt, ok := child.(*schema.OptionalNode); !ok || opt.Nullable {
					child = schema.Optional(child)
				}
			}
			fields = append(fields, schema.Prop(e.key, child))
		}
	}

	obj := schema.Object(fields...)
	v, ok := m.get("additionalProperties")
	if !ok {
		return obj, nil
	}
	if v.Kind == yaml.ScalarNode && v.Tag == "!!bool" {
		if v.Value == "false" {
			return obj.Strict(), nil
		}
		return obj, nil
	}
	value, err := parseNode(v, childPath(path, "additionalProperties"))
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, errorAt(v, childPath(path, "additionalProperties"), "a value schema cannot be combined with properties")
	}
	return schema.Record(value), nil
}

func parseArray(m *mapping, path string) (schema.Node, error) {
	if v, ok := m.get("prefixItems"); ok {
		items, err := parseList(v, childPath(path, "prefixItems"))
		if err != nil {
			return nil, err
		}
		return schema.Tuple(items...), nil
	}

	var elem schema.Node = schema.Any()
	if v, ok := m.get("items"); ok {
		var err error
		if elem, err = parseNode(v, childPath(path, "items")); err != nil {
			return nil, err
		}
	}
	arr := schema.Array(elem)

	minItems, hasMin, err := optionalCount(m, "minItems", path)
	if err != nil {
		return nil, err
	}
	maxItems, hasMax, err := optionalCount(m, "maxItems", path)
	if err != nil {
		return nil, err
	}
	switch {
	case hasMin && hasMax && minItems == maxItems:
		arr = arr.Length(minItems)
	default:
		if hasMin {
			arr = arr.Min(minItems)
		}
		if hasMax {
			arr = arr.Max(maxItems)
		}
	}
	return arr, nil
}

func parseString(m *mapping, path string) (schema.Node, error) {
	format := ""
	if v, ok := m.get("format"); ok {
		format = v.Value
	}
	if format == "date-time" {
		return parseDate(m, path)
	}

	s := schema.String()
	switch format {
	case "":
	case "email":
		s = s.Email()
	case "uri", "url":
		s = s.URL()
	case "uuid":
		s = s.UUID()
	default:
		v, _ := m.get("format")
		return nil, errorAt(v, childPath(path, "format"), fmt.Sprintf("unsupported format %q", format))
	}

	if n, ok, err := optionalCount(m, "minLength", path); err != nil {
		return nil, err
	} else if ok {
		s = s.Min(n)
	}
	if n, ok, err := optionalCount(m, "maxLength", path); err != nil {
		return nil, err
	} else if ok {
		s = s.Max(n)
	}
	if v, ok := m.get("pattern"); ok {
		re, err := regexp.Compile(v.Value)
		if err != nil {
			return nil, wrapAt(v, childPath(path, "pattern"), "invalid pattern", err)
		}
		s = s.Match(re)
	}
	return s, nil
}

func parseDate(m *mapping, path string) (schema.Node, error) {
	d := schema.Date()
	for _, key := range []string{"formatMinimum", "formatMaximum"} {
		v, ok := m.get(key)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, v.Value)
		if err != nil {
			return nil, wrapAt(v, childPath(path, key), "invalid date", err)
		}
		if key == "formatMinimum" {
			d = d.Min(t)
		} else {
			d = d.Max(t)
		}
	}
	return d, nil
}

func parseNumber(m *mapping, path string, integer bool) (schema.Node, error) {
	n := schema.Number()
	if integer {
		n = n.Int()
	}

	if v, ok, err := optionalFloat(m, "minimum", path); err != nil {
		return nil, err
	} else if ok {
		n = n.Min(v)
	}
	if v, ok, err := optionalFloat(m, "maximum", path); err != nil {
		return nil, err
	} else if ok {
		n = n.Max(v)
	}
	if v, ok, err := optionalFloat(m, "multipleOf", path); err != nil {
		return nil, err
	} else if ok {
		n = n.MultipleOf(v)
	}

	// exclusiveMinimum is a number in draft-06 and later, a flag on minimum in
	// OpenAPI 3.0.
	if v, ok := m.get("exclusiveMinimum"); ok {
		if v.Tag == "!!bool" {
			if v.Value == "true" && n.Gte != nil {
				n = n.ExclusiveMin(*n.Gte)
				n.Gte = nil
			}
		} else if f, _, err := optionalFloat(m, "exclusiveMinimum", path); err != nil {
			return nil, err
		} else {
			n = n.ExclusiveMin(f)
		}
	}
	if v, ok := m.get("exclusiveMaximum"); ok {
		if v.Tag == "!!bool" {
			if v.Value == "true" && n.Lte != nil {
				n = n.ExclusiveMax(*n.Lte)
				n.Lte = nil
			}
		} else if f, _, err := optionalFloat(m, "exclusiveMaximum", path); err != nil {
			return nil, err
		} else {
			n = n.ExclusiveMax(f)
		}
	}
	return n, nil
}

func parseEnum(v *yaml.Node, path string) (schema.Node, bool, error) {
	if v.Kind != yaml.SequenceNode || len(v.Content) == 0 {
		return nil, false, errorAt(v, path, "enum must be a non-empty list")
	}

	var (
		values   []any
		strs     []string
		nullable bool
	)
	for i, item := range v.Content {
		val, err := scalarValue(item, childPath(path, fmt.Sprint(i)))
		if err != nil {
			return nil, false, err
		}
		if val == nil {
			nullable = true
			continue
		}
		values = append(values, val)
		if s, ok := val.(string); ok {
			strs = append(strs, s)
		}
	}

	switch {
	case len(values) == 0:
		return schema.Null(), false, nil
	case len(strs) == len(values):
		return schema.Enum(strs...), nullable, nil
	case len(values) == 1:
		return schema.Literal(values[0]), nullable, nil
	}
	literals := make([]schema.Node, len(values))
	for i, val := range values {
		literals[i] = schema.Literal(val)
	}
	u, err := schema.Union(literals...)
	if err != nil {
		return nil, false, wrapAt(v, path, "invalid enum", err)
	}
	return u, nullable, nil
}

// parseUnion turns anyOf/oneOf into a union. A pair where one member is
// null becomes a nullable optional of the other.
func parseUnion(v *yaml.Node, path string) (schema.Node, error) {
	options, err := parseList(v, path)
	if err != nil {
		return nil, err
	}
	if len(options) == 2 {
		for i, opt := range options {
			if opt.TypeName() == schema.TypeNull {
				return schema.Optional(options[1-i]).AsNullable(), nil
			}
		}
	}
	if len(options) == 1 {
		return options[0], nil
	}
	u, err := schema.Union(options...)
	if err != nil {
		return nil, wrapAt(v, path, "invalid union", err)
	}
	return u, nil
}

func parseList(v *yaml.Node, path string) ([]schema.Node, error) {
	if v.Kind != yaml.SequenceNode {
		return nil, errorAt(v, path, "expected a list")
	}
	out := make([]schema.Node, 0, len(v.Content))
	for i, item := range v.Content {
		n, err := parseNode(item, childPath(path, fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// scalarValue decodes a YAML scalar into the shape produced by JSON
// decoding: numbers become float64.
func scalarValue(v *yaml.Node, path string) (any, error) {
	if v.Kind != yaml.ScalarNode {
		return nil, errorAt(v, path, "expected a scalar")
	}
	var val any
	if err := v.Decode(&val); err != nil {
		return nil, wrapAt(v, path, "invalid value", err)
	}
	switch t := val.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	}
	return val, nil
}

func optionalBool(m *mapping, key, path string) (bool, error) {
	v, ok := m.get(key)
	if !ok {
		return false, nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false, wrapAt(v, childPath(path, key), "expected a boolean", err)
	}
	return b, nil
}

func optionalCount(m *mapping, key, path string) (int, bool, error) {
	v, ok := m.get(key)
	if !ok {
		return 0, false, nil
	}
	var n int
	if err := v.Decode(&n); err != nil {
		return 0, false, wrapAt(v, childPath(path, key), "expected an integer", err)
	}
	if n < 0 {
		return 0, false, &ParseError{Path: childPath(path, key), Line: v.Line, Message: "must not be negative", Err: schema.ErrInvalidRange}
	}
	return n, true, nil
}

func optionalFloat(m *mapping, key, path string) (float64, bool, error) {
	v, ok := m.get(key)
	if !ok {
		return 0, false, nil
	}
	var f float64
	if err := v.Decode(&f); err != nil {
		return 0, false, wrapAt(v, childPath(path, key), "expected a number", err)
	}
	return f, true, nil
}

func describe(n schema.Node, desc string) schema.Node {
	switch t := n.(type) {
	case *schema.ObjectNode:
		return t.Describe(desc)
	case *schema.ArrayNode:
		return t.Describe(desc)
	case *schema.UnionNode:
		return t.Describe(desc)
	case *schema.OptionalNode:
		return t.Describe(desc)
	case *schema.StringNode:
		return t.Describe(desc)
	case *schema.NumberNode:
		return t.Describe(desc)
	case *schema.DateNode:
		return t.Describe(desc)
	case *schema.OtherNode:
		return t.Describe(desc)
	}
	return n
}

var errNoRefine = errors.New("node does not accept refinements")

func refine(n schema.Node, name string, check func(any) error) (schema.Node, error) {
	switch t := n.(type) {
	case *schema.ObjectNode:
		return t.Refine(name, check), nil
	case *schema.ArrayNode:
		return t.Refine(name, check), nil
	case *schema.UnionNode:
		return t.Refine(name, check), nil
	case *schema.OptionalNode:
		inner, err := refine(t.Inner, name, check)
		if err != nil {
			return nil, err
		}
		return &schema.OptionalNode{Meta: t.Meta, Inner: inner, Nullable: t.Nullable}, nil
	case *schema.StringNode:
		return t.Refine(name, check), nil
	case *schema.NumberNode:
		return t.Refine(name, check), nil
	case *schema.DateNode:
		return t.Refine(name, check), nil
	case *schema.OtherNode:
		return t.Refine(name, check), nil
	}
	return nil, errNoRefine
}
