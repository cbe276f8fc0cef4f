package schemacompat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2bigO/schemacompat/schema"
)

func renderJSON(t *testing.T, n schema.Node, target Target) string {
	t.Helper()
	s, err := Render(n, target)
	require.NoError(t, err)
	p := &Processed{Schema: s}
	data, err := p.JSON()
	require.NoError(t, err)
	return string(data)
}

func TestRender_Object(t *testing.T) {
	n := schema.Object(
		schema.Prop("zeta", schema.String()),
		schema.Prop("alpha", schema.Optional(schema.Int())),
		schema.Prop("mid", schema.Optional(schema.Bool()).AsNullable()),
	).Describe("Thing").Strict()

	got := renderJSON(t, n, TargetJSONSchema7)
	assert.JSONEq(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"description": "Thing",
		"properties": {
			"zeta": {"type": "string"},
			"alpha": {"type": "integer"},
			"mid": {"anyOf": [{"type": "boolean"}, {"type": "null"}]}
		},
		"required": ["zeta", "mid"],
		"additionalProperties": false
	}`, got)

	t.Run("property order is kept", func(t *testing.T) {
		s, err := Render(n, TargetJSONSchema7)
		require.NoError(t, err)
		var keys []string
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
		}
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
	})
}

func TestRender_Targets(t *testing.T) {
	n := schema.Optional(schema.String()).AsNullable()

	s, err := Render(n, TargetJSONSchema2019)
	require.NoError(t, err)
	assert.Equal(t, "https://json-schema.org/draft/2019-09/schema#", s.Version)

	got := renderJSON(t, n, TargetOpenAPI3)
	assert.JSONEq(t, `{"type": "string", "nullable": true}`, got)

	_, err = Render(n, Target("xml"))
	assert.Error(t, err)
}

func TestRender_Leaves(t *testing.T) {
	tests := []struct {
		name   string
		node   schema.Node
		target Target
		want   string
	}{
		{"string", schema.String().Min(1).Max(5).Regex(`^a`), TargetOpenAPI3,
			`{"type":"string","minLength":1,"maxLength":5,"pattern":"^a"}`},
		{"email", schema.Email(), TargetOpenAPI3, `{"type":"string","format":"email"}`},
		{"url", schema.URL(), TargetOpenAPI3, `{"type":"string","format":"uri"}`},
		{"uuid", schema.UUID(), TargetOpenAPI3, `{"type":"string","format":"uuid"}`},
		{"number", schema.Number().Min(0.5).ExclusiveMax(10).MultipleOf(0.5), TargetOpenAPI3,
			`{"type":"number","minimum":0.5,"maximum":10,"exclusiveMaximum":true,"multipleOf":0.5}`},
		{"number draft-07", schema.Int().ExclusiveMin(0).Max(10), TargetJSONSchema7,
			`{"$schema":"http://json-schema.org/draft-07/schema#","type":"integer","exclusiveMinimum":0,"maximum":10}`},
		{"date", schema.Date().Describe("When"), TargetOpenAPI3,
			`{"type":"string","format":"date-time","description":"When"}`},
		{"array exact", schema.Array(schema.Bool()).Length(3), TargetOpenAPI3,
			`{"type":"array","items":{"type":"boolean"},"minItems":3,"maxItems":3}`},
		{"union", schema.MustUnion(schema.String(), schema.Number()), TargetOpenAPI3,
			`{"anyOf":[{"type":"string"},{"type":"number"}]}`},
		{"null", schema.Null(), TargetJSONSchema7,
			`{"$schema":"http://json-schema.org/draft-07/schema#","type":"null"}`},
		{"enum", schema.Enum("a", "b"), TargetOpenAPI3, `{"type":"string","enum":["a","b"]}`},
		{"literal", schema.Literal("x"), TargetJSONSchema7,
			`{"$schema":"http://json-schema.org/draft-07/schema#","const":"x"}`},
		{"literal openapi", schema.Literal("x"), TargetOpenAPI3, `{"enum":["x"]}`},
		{"tuple", schema.Tuple(schema.String(), schema.Int()), TargetOpenAPI3,
			`{"type":"array","prefixItems":[{"type":"string"},{"type":"integer"}],"minItems":2,"maxItems":2}`},
		{"record", schema.Record(schema.Number()), TargetOpenAPI3,
			`{"type":"object","additionalProperties":{"type":"number"}}`},
		{"intersection", schema.Intersection(schema.Object(), schema.Object()), TargetOpenAPI3,
			`{"allOf":[{"type":"object","properties":{}},{"type":"object","properties":{}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, renderJSON(t, tt.node, tt.target))
		})
	}
}

func TestRender_AnyAndNever(t *testing.T) {
	anyS, err := Render(schema.Any().Describe("anything"), TargetOpenAPI3)
	require.NoError(t, err)
	assert.Empty(t, anyS.Type)
	assert.Equal(t, "anything", anyS.Description)

	never, err := Render(schema.Never(), TargetOpenAPI3)
	require.NoError(t, err)
	assert.Empty(t, never.Type)
	assert.NotNil(t, never.Not)
}

func TestRender_RefinementsAreNotRendered(t *testing.T) {
	n := schema.String().Refine("upper", func(any) error { return nil })
	assert.JSONEq(t, `{"type":"string"}`, renderJSON(t, n, TargetOpenAPI3))
}

func TestRender_InvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		node schema.Node
		path string
	}{
		{"string min over max", schema.Object(schema.Prop("s", schema.String().Min(5).Max(2))), "/s"},
		{"negative length", schema.String().Min(-1), "/"},
		{"array min over max", schema.Array(schema.String()).Min(3).Max(1), "/"},
		{"number min over max", schema.Number().Min(10).Max(1), "/"},
		{"nested array element", schema.Array(schema.String().Max(-2)), "/items"},
		{"infinite maximum", schema.Number().Max(math.Inf(1)), "/"},
		{"infinite exclusive minimum", schema.Object(schema.Prop("n", schema.Number().ExclusiveMin(math.Inf(-1)))), "/n"},
		{"NaN multipleOf", schema.Number().MultipleOf(math.NaN()), "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.node, TargetJSONSchema7)
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrInvalidRange)
			var defErr *schema.DefinitionError
			require.ErrorAs(t, err, &defErr)
			assert.Equal(t, tt.path, defErr.Path)
		})
	}

	t.Run("union arity", func(t *testing.T) {
		_, err := Render(&schema.UnionNode{Options: []schema.Node{schema.String()}}, TargetJSONSchema7)
		assert.ErrorIs(t, err, schema.ErrUnionArity)
	})
}
