// Package profile provides compatibility layers for the major model
// providers. Each constructor returns a [schemacompat.Layer] whose
// ShouldApply reports whether the model belongs to that profile.
package profile

import (
	"errors"
	"regexp"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/schema"
)

// AnyCastHint is appended to the description of "any" nodes cast to strings
// for models that reject untyped parameters.
const AnyCastHint = "\nArgument was an \"any\" type, but you (the LLM) do not support \"any\", so it was cast to a \"string\" type"

var reasoningModel = regexp.MustCompile(`(^|[^a-z0-9])o[134]([^0-9]|$)`)

// IsReasoningModel reports whether m is an OpenAI o-series reasoning model.
func IsReasoningModel(m schemacompat.Model) bool {
	return reasoningModel.MatchString(m.ID)
}

func isOpenAI(m schemacompat.Model) bool {
	return m.HasProvider(schemacompat.ProviderOpenAI) || m.IDContains("openai")
}

func keepNumber(_ *schemacompat.Layer, n *schema.NumberNode) (schema.Node, error) { return n, nil }

func keepDate(_ *schemacompat.Layer, n *schema.DateNode) (schema.Node, error) { return n, nil }

func optionalFor(types ...schema.TypeName) func(*schemacompat.Layer, *schema.OptionalNode) (schema.Node, error) {
	return func(l *schemacompat.Layer, n *schema.OptionalNode) (schema.Node, error) {
		return l.OptionalHandler(n, types...)
	}
}

func arrayChecks(checks ...schemacompat.ArrayCheck) func(*schemacompat.Layer, *schema.ArrayNode) (schema.Node, error) {
	return func(l *schemacompat.Layer, n *schema.ArrayNode) (schema.Node, error) {
		return l.ArrayHandler(n, checks...)
	}
}

func failOn(types ...schema.TypeName) func(*schemacompat.Layer, *schema.OtherNode) (schema.Node, error) {
	return func(l *schemacompat.Layer, n *schema.OtherNode) (schema.Node, error) {
		return l.UnsupportedHandler(n, types...)
	}
}

// OpenAI adapts schemas for OpenAI chat models without native structured
// outputs.
func OpenAI(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	h := schemacompat.Handlers{
		Optional: optionalFor(
			schema.TypeObject, schema.TypeArray, schema.TypeUnion, schema.TypeString,
			schema.TypeNever, schema.TypeUndefined, schema.TypeTuple,
		),
		String: func(l *schemacompat.Layer, n *schema.StringNode) (schema.Node, error) {
			if l.Model().IDContains("gpt-4o-mini") {
				return l.StringHandler(n, schemacompat.StringRegex)
			}
			return l.StringHandler(n)
		},
		Number: keepNumber,
		Date:   keepDate,
		Other:  failOn(schema.TypeNever, schema.TypeUndefined, schema.TypeTuple),
	}
	return newLayer(m, h, func(m schemacompat.Model) bool {
		return !m.SupportsStructuredOutputs && isOpenAI(m)
	}, schemacompat.TargetJSONSchema7, opts)
}

// OpenAIReasoning adapts schemas for OpenAI o-series models and models with
// native structured outputs. Optional properties become required nullable
// ones, every bound is degraded, and "any" is cast to a string.
func OpenAIReasoning(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	h := schemacompat.Handlers{
		Optional: func(l *schemacompat.Layer, n *schema.OptionalNode) (schema.Node, error) {
			inner, err := l.Process(n.Inner)
			if err != nil {
				return nil, err
			}
			return &schema.OptionalNode{Meta: n.Meta, Inner: inner, Nullable: true}, nil
		},
		Other: func(l *schemacompat.Layer, n *schema.OtherNode) (schema.Node, error) {
			if n.Type == schema.TypeAny {
				return schema.String().Describe(n.Description + AnyCastHint), nil
			}
			return l.DefaultUnsupportedHandler(n)
		},
	}
	return newLayer(m, h, func(m schemacompat.Model) bool {
		return (m.SupportsStructuredOutputs || IsReasoningModel(m)) && isOpenAI(m)
	}, schemacompat.TargetOpenAPI3, opts)
}

// Anthropic adapts schemas for Claude models.
func Anthropic(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	haiku := m.IDContains("claude-3.5-haiku")
	optional := []schema.TypeName{
		schema.TypeObject, schema.TypeArray, schema.TypeUnion,
		schema.TypeNever, schema.TypeUndefined, schema.TypeTuple,
	}
	if haiku {
		optional = append(optional, schema.TypeString)
	}
	h := schemacompat.Handlers{
		Optional: optionalFor(optional...),
		Array:    arrayChecks(),
		String: func(l *schemacompat.Layer, n *schema.StringNode) (schema.Node, error) {
			if haiku {
				return l.StringHandler(n, schemacompat.StringMax, schemacompat.StringMin)
			}
			return n, nil
		},
		Number: keepNumber,
		Date:   keepDate,
		Other:  failOn(schema.TypeNever, schema.TypeTuple, schema.TypeUndefined),
	}
	return newLayer(m, h, func(m schemacompat.Model) bool {
		return m.IDContains("claude")
	}, schemacompat.TargetJSONSchema7, opts)
}

// Google adapts schemas for Gemini models on Google AI and Vertex AI. Null
// nodes become "any" nodes with a runtime null check.
func Google(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	h := schemacompat.Handlers{
		Optional: optionalFor(
			schema.TypeObject, schema.TypeArray, schema.TypeUnion, schema.TypeString, schema.TypeNumber,
		),
		Array: arrayChecks(),
		Other: func(l *schemacompat.Layer, n *schema.OtherNode) (schema.Node, error) {
			if n.Type != schema.TypeNull {
				return l.DefaultUnsupportedHandler(n)
			}
			desc := n.Description
			if desc == "" {
				desc = "must be null"
			}
			return schema.Any().Describe(desc).Refine("null", mustBeNull), nil
		},
	}
	return newLayer(m, h, func(m schemacompat.Model) bool {
		return m.HasProvider(schemacompat.ProviderGoogle, schemacompat.ProviderVertex) || m.IDContains("google")
	}, schemacompat.TargetJSONSchema7, opts)
}

func mustBeNull(v any) error {
	if v != nil {
		return errors.New("must be null")
	}
	return nil
}

// DeepSeek adapts schemas for DeepSeek chat models. R1 models are excluded.
func DeepSeek(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	h := schemacompat.Handlers{
		Optional: optionalFor(
			schema.TypeObject, schema.TypeArray, schema.TypeUnion, schema.TypeString, schema.TypeNumber,
		),
		Array:  arrayChecks(schemacompat.ArrayMin, schemacompat.ArrayMax),
		Number: keepNumber,
		Date:   keepDate,
	}
	return newLayer(m, h, func(m schemacompat.Model) bool {
		return m.IDContains("deepseek") && !m.IDContains("r1")
	}, schemacompat.TargetJSONSchema7, opts)
}

// Meta adapts schemas for Llama models.
func Meta(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	h := schemacompat.Handlers{
		Optional: optionalFor(
			schema.TypeObject, schema.TypeArray, schema.TypeUnion, schema.TypeString, schema.TypeNumber,
		),
		Array: arrayChecks(schemacompat.ArrayMin, schemacompat.ArrayMax),
		Date:  keepDate,
	}
	return newLayer(m, h, func(m schemacompat.Model) bool {
		return m.IDContains("meta")
	}, schemacompat.TargetJSONSchema7, opts)
}

func newLayer(m schemacompat.Model, h schemacompat.Handlers, applies func(schemacompat.Model) bool,
	target schemacompat.Target, opts []schemacompat.LayerOption) *schemacompat.Layer {
	base := []schemacompat.LayerOption{
		schemacompat.WithHandlers(h),
		schemacompat.WithApplies(applies),
		schemacompat.WithTarget(target),
	}
	return schemacompat.NewLayer(m, append(base, opts...)...)
}

// Default returns every profile for m in priority order. Pass the result to
// [schemacompat.Apply]; the first profile that applies wins.
func Default(m schemacompat.Model, opts ...schemacompat.LayerOption) []*schemacompat.Layer {
	return []*schemacompat.Layer{
		OpenAIReasoning(m, opts...),
		OpenAI(m, opts...),
		Google(m, opts...),
		Anthropic(m, opts...),
		DeepSeek(m, opts...),
		Meta(m, opts...),
	}
}

// Select returns the first profile that applies to m, or nil.
func Select(m schemacompat.Model, opts ...schemacompat.LayerOption) *schemacompat.Layer {
	for _, l := range Default(m, opts...) {
		if l.ShouldApply() {
			return l
		}
	}
	return nil
}

// Apply processes root for m with the default profiles.
func Apply(root schema.Node, m schemacompat.Model, opts ...schemacompat.LayerOption) (*schemacompat.Processed, error) {
	return schemacompat.Apply(root, Default(m, opts...)...)
}
