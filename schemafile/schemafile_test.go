package schemafile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/schema"
)

const orderYAML = `
type: object
description: A purchase order
additionalProperties: false
properties:
  id: {type: string, format: uuid}
  customer:
    type: object
    properties:
      email: {type: string, format: email}
      name: {type: string, minLength: 1, maxLength: 80}
    required: [email]
  items:
    type: array
    minItems: 1
    items:
      type: object
      properties:
        sku: {type: string, pattern: "^[A-Z]{3}-[0-9]+$"}
        qty: {type: integer, minimum: 1, exclusiveMaximum: 100}
      required: [sku, qty]
  placed: {type: string, format: date-time}
  note: {type: [string, "null"]}
  status: {enum: [open, closed]}
required: [id, customer, items, placed, note, status]
`

func TestParse_Order(t *testing.T) {
	n, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	obj, ok := n.(*schema.ObjectNode)
	require.True(t, ok)
	assert.Equal(t, "A purchase order", obj.Description)
	assert.True(t, obj.Closed)
	assert.Equal(t, []string{"id", "customer", "items", "placed", "note", "status"}, obj.Names())

	id, _ := obj.Field("id")
	assert.Equal(t, schema.FormatUUID, id.(*schema.StringNode).Format)

	customer, _ := obj.Field("customer")
	cust := customer.(*schema.ObjectNode)
	name, _ := cust.Field("name")
	require.True(t, schema.IsOptional(name))
	inner := name.(*schema.OptionalNode).Inner.(*schema.StringNode)
	assert.Equal(t, 1, *inner.MinLength)
	assert.Equal(t, 80, *inner.MaxLength)

	items, _ := obj.Field("items")
	arr := items.(*schema.ArrayNode)
	assert.Equal(t, 1, *arr.MinItems)
	qty, _ := arr.Element.(*schema.ObjectNode).Field("qty")
	num := qty.(*schema.NumberNode)
	assert.True(t, num.IsInt)
	assert.Equal(t, 1.0, *num.Gte)
	assert.Equal(t, 100.0, *num.Lt)

	placed, _ := obj.Field("placed")
	assert.True(t, schema.IsDate(placed))

	note, _ := obj.Field("note")
	require.True(t, schema.IsOptional(note))
	assert.True(t, note.(*schema.OptionalNode).Nullable)

	status, _ := obj.Field("status")
	assert.Equal(t, schema.TypeEnum, status.TypeName())
}

func TestParse_ValidatesLikeJSONSchema(t *testing.T) {
	n, err := Parse([]byte(orderYAML))
	require.NoError(t, err)

	valid := map[string]any{
		"id":       "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		"customer": map[string]any{"email": "a@example.com"},
		"items":    []any{map[string]any{"sku": "ABC-1", "qty": 3.0}},
		"placed":   "2024-05-01T10:00:00Z",
		"note":     nil,
		"status":   "open",
	}
	res := schema.Validate(n, valid)
	require.True(t, res.Success, res.Issues.Error())

	invalid := map[string]any{
		"id":       "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		"customer": map[string]any{"email": "a@example.com"},
		"items":    []any{map[string]any{"sku": "abc", "qty": 100.0}},
		"placed":   "2024-05-01T10:00:00Z",
		"note":     nil,
		"status":   "open",
		"extra":    true,
	}
	res = schema.Validate(n, invalid)
	require.False(t, res.Success)

	paths := map[string]string{}
	for _, it := range res.Issues {
		paths[it.Path] = it.Code
	}
	assert.Equal(t, schema.CodePattern, paths["/items/0/sku"])
	assert.Equal(t, schema.CodeTooBig, paths["/items/0/qty"])
	assert.Equal(t, schema.CodeUnknownKey, paths["/extra"])
}

func TestParse_JSON(t *testing.T) {
	n, err := Parse([]byte(`{
		"type": "object",
		"properties": {
			"z": {"type": "boolean"},
			"a": {"anyOf": [{"type": "string"}, {"type": "number"}, {"type": "null"}]},
			"m": {"type": "object", "additionalProperties": {"type": "integer"}},
			"t": {"type": "array", "prefixItems": [{"type": "string"}, {"type": "number"}]},
			"c": {"const": 3},
			"e": {"enum": [1, "two"]}
		},
		"required": ["z", "a", "m", "t", "c", "e"]
	}`))
	require.NoError(t, err)

	obj := n.(*schema.ObjectNode)
	assert.Equal(t, []string{"z", "a", "m", "t", "c", "e"}, obj.Names())

	a, _ := obj.Field("a")
	require.True(t, schema.IsUnion(a))
	assert.Len(t, a.(*schema.UnionNode).Options, 3)

	m, _ := obj.Field("m")
	assert.Equal(t, schema.TypeRecord, m.TypeName())

	tup, _ := obj.Field("t")
	assert.Equal(t, schema.TypeTuple, tup.TypeName())

	c, _ := obj.Field("c")
	assert.Equal(t, []any{3.0}, c.(*schema.OtherNode).Values)

	e, _ := obj.Field("e")
	assert.True(t, schema.IsUnion(e))
}

func TestParse_NullablePairs(t *testing.T) {
	n, err := Parse([]byte(`anyOf: [{type: string, minLength: 2}, {type: "null"}]`))
	require.NoError(t, err)
	opt := n.(*schema.OptionalNode)
	assert.True(t, opt.Nullable)
	assert.True(t, schema.IsString(opt.Inner))

	n, err = Parse([]byte(`{type: number, nullable: true}`))
	require.NoError(t, err)
	assert.True(t, n.(*schema.OptionalNode).Nullable)

	n, err = Parse([]byte(`{type: integer, minimum: 0, exclusiveMinimum: true}`))
	require.NoError(t, err)
	num := n.(*schema.NumberNode)
	assert.Nil(t, num.Gte)
	assert.Equal(t, 0.0, *num.Gt)
}

func TestParse_NullableProperties(t *testing.T) {
	doc := `
type: object
properties:
  id: {type: [string, "null"]}
  nick: {type: [string, "null"], maxLength: 8}
  age: {type: integer, nullable: true}
required: [id]
`
	n, err := Parse([]byte(doc))
	require.NoError(t, err)

	s, err := schemacompat.Render(n, schemacompat.TargetJSONSchema7)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, s.Required)
	for _, name := range []string{"id", "nick", "age"} {
		prop, ok := s.Properties.Get(name)
		require.True(t, ok, name)
		require.Len(t, prop.AnyOf, 2, name)
		assert.Equal(t, "null", prop.AnyOf[1].Type, name)
	}

	assert.True(t, schema.Validate(n, map[string]any{"id": "a"}).Success)
	assert.True(t, schema.Validate(n, map[string]any{"id": nil, "nick": nil, "age": nil}).Success)
	assert.True(t, schema.Validate(n, map[string]any{"id": "a", "nick": "bob", "age": 3}).Success)
	assert.False(t, schema.Validate(n, map[string]any{"id": "a", "nick": "much too long"}).Success)
}

func TestParse_BooleanSchemas(t *testing.T) {
	n, err := Parse([]byte(`true`))
	require.NoError(t, err)
	assert.Equal(t, schema.TypeAny, n.TypeName())

	n, err = Parse([]byte(`false`))
	require.NoError(t, err)
	assert.Equal(t, schema.TypeNever, n.TypeName())
}

func TestParse_Refinements(t *testing.T) {
	doc := `
type: object
properties:
  min: {type: number}
  max: {type: number}
  code:
    type: string
    x-refine:
      - name: prefix
        rule: value.startsWith("ab")
required: [min, max, code]
x-refine:
  - name: ordered
    rule: value.min <= value.max
    message: min must not exceed max
`
	n, err := Parse([]byte(doc))
	require.NoError(t, err)

	res := schema.Validate(n, map[string]any{"min": 1.0, "max": 2.0, "code": "abc"})
	require.True(t, res.Success, res.Issues.Error())

	res = schema.Validate(n, map[string]any{"min": 3.0, "max": 2.0, "code": "abc"})
	require.False(t, res.Success)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, schema.CodeCustom, res.Issues[0].Code)
	assert.Equal(t, "min must not exceed max", res.Issues[0].Message)

	res = schema.Validate(n, map[string]any{"min": 1.0, "max": 2.0, "code": "xyz"})
	require.False(t, res.Success)
	assert.Equal(t, "/code", res.Issues[0].Path)
	assert.Equal(t, "failed rule prefix", res.Issues[0].Message)
}

func TestParse_GuardedRefinement(t *testing.T) {
	doc := `
type: object
properties:
  start: {type: string, format: date-time}
  end: {type: string, format: date-time}
x-refine:
  - name: ordered
    rule: 'has(value.start) && has(value.end) ? value.start < value.end : true'
    message: start must be before end
`
	n, err := Parse([]byte(doc))
	require.NoError(t, err)

	res := schema.Validate(n, map[string]any{"start": "2024-01-01T00:00:00Z"})
	assert.True(t, res.Success, res.Issues.Error())
	res = schema.Validate(n, map[string]any{})
	assert.True(t, res.Success, res.Issues.Error())
	res = schema.Validate(n, map[string]any{"start": "2024-01-01T00:00:00Z", "end": "2024-02-01T00:00:00Z"})
	assert.True(t, res.Success, res.Issues.Error())

	res = schema.Validate(n, map[string]any{"start": "2024-03-01T00:00:00Z", "end": "2024-02-01T00:00:00Z"})
	require.False(t, res.Success)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "start must be before end", res.Issues[0].Message)
	assert.Equal(t, "ordered", res.Issues[0].Rule)
}

func TestCompileRule(t *testing.T) {
	check, err := CompileRule("positive", "value > 0", "")
	require.NoError(t, err)
	assert.NoError(t, check(2.5))
	assert.NoError(t, check(3))
	assert.EqualError(t, check(-1.0), "failed rule positive")

	_, err = CompileRule("bad", "value >", "")
	assert.Error(t, err)

	_, err = CompileRule("not bool", `"text"`, "")
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		line int
	}{
		{"unknown type", "type: decimal", "/type", 1},
		{"bad pattern", "type: string\npattern: '('", "/pattern", 2},
		{"negative length", "type: string\nminLength: -1", "/minLength", 2},
		{"unknown format", "type: string\nformat: ipv4", "/format", 2},
		{"not a mapping", "- a\n- b", "/", 1},
		{"nested", "type: object\nproperties:\n  a:\n    type: wat", "/properties/a/type", 4},
		{"bad rule", "type: string\nx-refine:\n  - rule: 'value +'", "/x-refine/0", 3},
		{"empty", "", "/", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.path, pe.Path)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: string\nformat: email"), 0o600))

	n, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, schema.FormatEmail, n.(*schema.StringNode).Format)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
