package profile

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/schema"
)

func openai(id string) schemacompat.Model {
	return schemacompat.Model{ID: id, Provider: schemacompat.ProviderOpenAI}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		model schemacompat.Model
		want  schemacompat.Target
		desc  string
	}{
		{"reasoning model", openai("o3-mini"), schemacompat.TargetOpenAPI3, "reasoning"},
		{"structured outputs", schemacompat.Model{ID: "gpt-4o", Provider: schemacompat.ProviderOpenAI, SupportsStructuredOutputs: true}, schemacompat.TargetOpenAPI3, "reasoning"},
		{"plain openai", openai("gpt-4o-mini"), schemacompat.TargetJSONSchema7, "openai"},
		{"gemini", schemacompat.Model{ID: "gemini-1.5-pro", Provider: schemacompat.ProviderGoogle}, schemacompat.TargetJSONSchema7, "google"},
		{"vertex", schemacompat.Model{ID: "gemini-2.0-flash", Provider: schemacompat.ProviderVertex}, schemacompat.TargetJSONSchema7, "google"},
		{"claude", schemacompat.Model{ID: "claude-3-5-sonnet", Provider: schemacompat.ProviderAnthropic}, schemacompat.TargetJSONSchema7, "anthropic"},
		{"deepseek", schemacompat.Model{ID: "deepseek-chat"}, schemacompat.TargetJSONSchema7, "deepseek"},
		{"llama", schemacompat.Model{ID: "meta-llama-3.1-70b"}, schemacompat.TargetJSONSchema7, "meta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Select(tt.model)
			require.NotNil(t, l)
			assert.Equal(t, tt.want, l.SchemaTarget())
			assert.Equal(t, tt.model, l.Model())
		})
	}

	t.Run("no profile", func(t *testing.T) {
		assert.Nil(t, Select(schemacompat.Model{ID: "deepseek-r1"}))
		assert.Nil(t, Select(schemacompat.Model{ID: "mistral-large"}))
	})
}

func TestIsReasoningModel(t *testing.T) {
	for id, want := range map[string]bool{
		"o1":          true,
		"o1-preview":  true,
		"o3-mini":     true,
		"o4-mini":     true,
		"gpt-4o-mini": false,
		"gpt-4o":      false,
		"o10":         false,
	} {
		assert.Equal(t, want, IsReasoningModel(schemacompat.Model{ID: id}), id)
	}
}

func TestProfileShouldApply(t *testing.T) {
	assert.True(t, OpenAI(openai("gpt-4")).ShouldApply())
	assert.False(t, OpenAI(schemacompat.Model{ID: "gpt-4", Provider: schemacompat.ProviderOpenAI, SupportsStructuredOutputs: true}).ShouldApply())
	assert.True(t, OpenAI(schemacompat.Model{ID: "openai-compatible"}).ShouldApply())
	assert.False(t, OpenAIReasoning(openai("gpt-4")).ShouldApply())
	assert.True(t, Anthropic(schemacompat.Model{ID: "claude-3-haiku"}).ShouldApply())
	assert.False(t, Anthropic(openai("gpt-4")).ShouldApply())
	assert.True(t, Google(schemacompat.Model{ID: "google/gemini"}).ShouldApply())
	assert.False(t, DeepSeek(schemacompat.Model{ID: "deepseek-r1"}).ShouldApply())
	assert.True(t, Meta(schemacompat.Model{ID: "meta-llama"}).ShouldApply())
}

func TestOpenAI(t *testing.T) {
	t.Run("strings keep everything but regex on mini", func(t *testing.T) {
		n := schema.String().Min(1).Regex(`^a`)

		out, err := OpenAI(openai("gpt-4o-mini")).Process(n)
		require.NoError(t, err)
		s := out.(*schema.StringNode)
		assert.Equal(t, `{"regex":{"pattern":"^a"}}`, s.Description)
		require.NotNil(t, s.MinLength)

		out, err = OpenAI(openai("gpt-4")).Process(n)
		require.NoError(t, err)
		assert.Same(t, n, out)
	})

	t.Run("arrays degrade all checks", func(t *testing.T) {
		out, err := OpenAI(openai("gpt-4")).Process(schema.Array(schema.String()).Min(1).Max(3))
		require.NoError(t, err)
		assert.Equal(t, `{"minLength":1,"maxLength":3}`, out.Metadata().Description)
	})

	t.Run("numbers and dates pass through", func(t *testing.T) {
		l := OpenAI(openai("gpt-4"))
		num := schema.Number().Min(1)
		out, err := l.Process(num)
		require.NoError(t, err)
		assert.Same(t, num, out)

		date := schema.Date()
		out, err = l.Process(date)
		require.NoError(t, err)
		assert.Same(t, date, out)
	})

	t.Run("unsupported types", func(t *testing.T) {
		l := OpenAI(openai("gpt-4"))
		for _, n := range []schema.Node{schema.Never(), schema.Undefined(), schema.Tuple(schema.String())} {
			_, err := l.Process(n)
			assert.ErrorIs(t, err, schemacompat.ErrUnsupportedType)
		}
		_, err := l.Process(schema.Null())
		assert.NoError(t, err)
	})

	t.Run("optional number is left alone", func(t *testing.T) {
		n := schema.Optional(schema.Number().Min(1))
		out, err := OpenAI(openai("gpt-4")).Process(n)
		require.NoError(t, err)
		assert.Same(t, n, out)
	})
}

func TestOpenAIReasoning(t *testing.T) {
	l := OpenAIReasoning(openai("o3-mini"))

	t.Run("optional becomes nullable", func(t *testing.T) {
		root := schema.Object(
			schema.Prop("name", schema.String()),
			schema.Prop("nick", schema.Optional(schema.String().Max(10))),
		)
		p, err := l.ProcessToSchema(root)
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "nick"}, p.Schema.Required)
		nick, _ := p.Schema.Properties.Get("nick")
		assert.Equal(t, true, nick.Extras["nullable"])
		assert.Equal(t, `{"maxLength":10}`, nick.Description)

		// the original optionality is still enforced
		assert.True(t, p.Validate(map[string]any{"name": "x"}).Success)
		assert.False(t, p.Validate(map[string]any{"name": "x", "nick": "far too long a nickname"}).Success)
	})

	t.Run("any becomes string", func(t *testing.T) {
		out, err := l.Process(schema.Any().Describe("Payload"))
		require.NoError(t, err)
		assert.True(t, schema.IsString(out))
		assert.Equal(t, "Payload"+AnyCastHint, out.Metadata().Description)
	})

	t.Run("dates become strings", func(t *testing.T) {
		out, err := l.Process(schema.Date())
		require.NoError(t, err)
		assert.True(t, schema.IsString(out))
	})

	t.Run("bounds degrade", func(t *testing.T) {
		out, err := l.Process(schema.Number().Min(1).Max(2))
		require.NoError(t, err)
		assert.Equal(t, `{"gte":1,"lte":2}`, out.Metadata().Description)
	})
}

func TestAnthropic(t *testing.T) {
	t.Run("arrays keep native bounds", func(t *testing.T) {
		out, err := Anthropic(schemacompat.Model{ID: "claude-3-opus"}).Process(schema.Array(schema.String()).Min(1))
		require.NoError(t, err)
		arr := out.(*schema.ArrayNode)
		assert.Empty(t, arr.Description)
		require.NotNil(t, arr.MinItems)
	})

	t.Run("strings untouched except on haiku", func(t *testing.T) {
		n := schema.Email().Min(3)
		out, err := Anthropic(schemacompat.Model{ID: "claude-3-opus"}).Process(n)
		require.NoError(t, err)
		assert.Same(t, n, out)

		out, err = Anthropic(schemacompat.Model{ID: "claude-3.5-haiku"}).Process(n)
		require.NoError(t, err)
		s := out.(*schema.StringNode)
		assert.Equal(t, `{"minLength":3}`, s.Description)
		assert.Equal(t, schema.FormatEmail, s.Format)
	})

	t.Run("optional string only rewritten on haiku", func(t *testing.T) {
		n := schema.Optional(schema.String().Min(3))
		out, err := Anthropic(schemacompat.Model{ID: "claude-3-opus"}).Process(n)
		require.NoError(t, err)
		assert.Same(t, n, out)

		out, err = Anthropic(schemacompat.Model{ID: "claude-3.5-haiku"}).Process(n)
		require.NoError(t, err)
		assert.NotSame(t, n, out)
	})

	t.Run("unsupported types", func(t *testing.T) {
		_, err := Anthropic(schemacompat.Model{ID: "claude-3-opus"}).Process(schema.Tuple(schema.String()))
		require.Error(t, err)
		assert.EqualError(t, err, "claude-3-opus does not support schema type: tuple")
	})
}

func TestGoogle(t *testing.T) {
	l := Google(schemacompat.Model{ID: "gemini-1.5-pro", Provider: schemacompat.ProviderGoogle})

	t.Run("null becomes any with a check", func(t *testing.T) {
		out, err := l.Process(schema.Null())
		require.NoError(t, err)
		assert.Equal(t, schema.TypeAny, out.TypeName())
		assert.Equal(t, "must be null", out.Metadata().Description)
		assert.True(t, schema.Validate(out, nil).Success)
		assert.False(t, schema.Validate(out, "x").Success)

		out, err = l.Process(schema.Null().Describe("Always empty"))
		require.NoError(t, err)
		assert.Equal(t, "Always empty", out.Metadata().Description)
	})

	t.Run("strings and numbers degrade, arrays do not", func(t *testing.T) {
		root := schema.Object(
			schema.Prop("s", schema.String().Max(5)),
			schema.Prop("n", schema.Number().Max(5)),
			schema.Prop("a", schema.Array(schema.Bool()).Max(5)),
		)
		p, err := l.ProcessToSchema(root)
		require.NoError(t, err)
		s, _ := p.Schema.Properties.Get("s")
		assert.Equal(t, `{"maxLength":5}`, s.Description)
		n, _ := p.Schema.Properties.Get("n")
		assert.Equal(t, `{"lte":5}`, n.Description)
		a, _ := p.Schema.Properties.Get("a")
		assert.EqualValues(t, 5, *a.MaxItems)
	})

	t.Run("dates become strings with refinements", func(t *testing.T) {
		lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		out, err := l.Process(schema.Date().Min(lo))
		require.NoError(t, err)
		assert.False(t, schema.Validate(out, "2023-01-01T00:00:00Z").Success)
	})
}

func TestDeepSeekAndMeta(t *testing.T) {
	arr := schema.Array(schema.String()).Min(1).Max(3).Length(2)

	for _, l := range []*schemacompat.Layer{
		DeepSeek(schemacompat.Model{ID: "deepseek-chat"}),
		Meta(schemacompat.Model{ID: "meta-llama-3"}),
	} {
		out, err := l.Process(arr)
		require.NoError(t, err)
		a := out.(*schema.ArrayNode)
		assert.Equal(t, `{"minLength":1,"maxLength":3}`, a.Description)
		require.NotNil(t, a.ExactLength)
	}

	t.Run("numbers", func(t *testing.T) {
		n := schema.Number().Min(1)
		out, err := DeepSeek(schemacompat.Model{ID: "deepseek-chat"}).Process(n)
		require.NoError(t, err)
		assert.Same(t, n, out)

		out, err = Meta(schemacompat.Model{ID: "meta-llama-3"}).Process(n)
		require.NoError(t, err)
		assert.Equal(t, `{"gte":1}`, out.Metadata().Description)
	})
}

func TestApply(t *testing.T) {
	root := schema.Object(schema.Prop("q", schema.String().Min(1)))

	p, err := Apply(root, schemacompat.Model{ID: "mistral-large"})
	require.NoError(t, err)
	q, _ := p.Schema.Properties.Get("q")
	require.NotNil(t, q.MinLength)

	p, err = Apply(root, schemacompat.Model{ID: "deepseek-chat"})
	require.NoError(t, err)
	q, _ = p.Schema.Properties.Get("q")
	assert.Nil(t, q.MinLength)
	assert.False(t, p.Validate(map[string]any{"q": ""}).Success)
}

// renderOutcome is what one layer produces for a root: its JSON, or the
// error text when processing fails.
type renderOutcome struct {
	JSON  string
	Err   string
	Valid bool
}

func renderWith(l *schemacompat.Layer, root schema.Node, value any) renderOutcome {
	p, err := l.ProcessToSchema(root)
	if err != nil {
		return renderOutcome{Err: err.Error()}
	}
	data, err := p.JSON()
	if err != nil {
		return renderOutcome{Err: err.Error()}
	}
	return renderOutcome{JSON: string(data), Valid: p.Validate(value).Success}
}

func TestConcurrentRenderingSharesRoot(t *testing.T) {
	root := schema.Object(
		schema.Prop("id", schema.String().UUID()),
		schema.Prop("email", schema.Optional(schema.Email().Max(80))),
		schema.Prop("tags", schema.Array(schema.String().Min(1)).Min(1).Max(5)),
		schema.Prop("score", schema.Number().Min(0).Max(100).MultipleOf(0.5)),
		schema.Prop("kind", schema.MustUnion(schema.Enum("a", "b"), schema.Int().Min(1))),
		schema.Prop("due", schema.Optional(schema.Date().Min(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))),
	).Describe("A shared root")
	value := map[string]any{
		"id":    "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		"tags":  []any{"x"},
		"score": 42.5,
		"kind":  "a",
		"due":   "2024-06-01T00:00:00Z",
	}

	models := []schemacompat.Model{
		openai("gpt-4o-mini"),
		{ID: "o3-mini", Provider: schemacompat.ProviderOpenAI, SupportsStructuredOutputs: true},
		{ID: "gemini-2.0-flash", Provider: schemacompat.ProviderGoogle},
		{ID: "claude-3.5-haiku", Provider: schemacompat.ProviderAnthropic},
		{ID: "deepseek-chat", Provider: schemacompat.ProviderDeepSeek},
		{ID: "meta-llama-3", Provider: schemacompat.ProviderMeta},
	}
	var layers []*schemacompat.Layer
	for _, m := range models {
		layers = append(layers, Default(m)...)
	}

	want := make([]renderOutcome, len(layers))
	for i, l := range layers {
		want[i] = renderWith(l, root, value)
	}
	before := renderWith(layers[0], root, value)

	const workers = 32
	mismatches := make(chan string, workers*len(layers))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for j := range layers {
				i := (j + offset) % len(layers)
				if got := renderWith(layers[i], root, value); got != want[i] {
					mismatches <- fmt.Sprintf("layer %d (%s): %+v != %+v", i, layers[i].ModelID(), got, want[i])
				}
			}
		}(w)
	}
	wg.Wait()
	close(mismatches)

	for m := range mismatches {
		t.Error(m)
	}
	assert.Equal(t, before, renderWith(layers[0], root, value), "root changed by rendering")
}
