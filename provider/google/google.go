// Package google converts compiled tools and processed schemas into genai
// request parameters for Gemini on Google AI and Vertex AI.
package google

import (
	stdjson "encoding/json"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"github.com/2bigO/schemacompat"
)

// ConvertSchema converts a rendered JSON Schema to a genai schema. A nullable
// anyOf pair collapses to its non-null member with Nullable set. Keywords
// genai cannot express are dropped; the validator still enforces them.
func ConvertSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	if inner, ok := nullablePair(s); ok {
		out := ConvertSchema(inner)
		if out.Description == "" {
			out.Description = s.Description
		}
		out.Nullable = genai.Ptr(true)
		return out
	}

	result := &genai.Schema{
		Description: s.Description,
		Format:      s.Format,
		Pattern:     s.Pattern,
	}
	switch s.Type {
	case "string":
		result.Type = genai.TypeString
	case "number":
		result.Type = genai.TypeNumber
	case "integer":
		result.Type = genai.TypeInteger
	case "boolean":
		result.Type = genai.TypeBoolean
	case "array":
		result.Type = genai.TypeArray
	case "object":
		result.Type = genai.TypeObject
	}
	if nullable, ok := s.Extras["nullable"].(bool); ok && nullable {
		result.Nullable = genai.Ptr(true)
	}

	for _, e := range s.Enum {
		if e == nil {
			result.Nullable = genai.Ptr(true)
			continue
		}
		result.Enum = append(result.Enum, fmt.Sprint(e))
	}
	if s.Const != nil {
		result.Enum = []string{fmt.Sprint(s.Const)}
	}

	if s.Properties != nil && s.Properties.Len() > 0 {
		result.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			result.Properties[pair.Key] = ConvertSchema(pair.Value)
			result.PropertyOrdering = append(result.PropertyOrdering, pair.Key)
		}
	}
	if len(s.Required) > 0 {
		result.Required = append([]string(nil), s.Required...)
	}

	result.Items = ConvertSchema(s.Items)
	for _, sub := range s.AnyOf {
		result.AnyOf = append(result.AnyOf, ConvertSchema(sub))
	}

	result.MinItems = int64Ptr(s.MinItems)
	result.MaxItems = int64Ptr(s.MaxItems)
	result.MinLength = int64Ptr(s.MinLength)
	result.MaxLength = int64Ptr(s.MaxLength)
	result.Minimum = floatPtr(s.Minimum)
	result.Maximum = floatPtr(s.Maximum)
	return result
}

// ConvertJSON decodes a rendered schema and converts it.
func ConvertJSON(data []byte) (*genai.Schema, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return ConvertSchema(&s), nil
}

// ConvertTools converts compiled tools to a genai tool declaration.
func ConvertTools(tools []*schemacompat.CompiledTool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	funcs := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		funcs[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  ConvertSchema(t.Schema),
		}
	}

	return []*genai.Tool{{FunctionDeclarations: funcs}}
}

// ResponseConfig returns a generation config requesting JSON output shaped
// by p.
func ResponseConfig(p *schemacompat.Processed) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ConvertSchema(p.Schema),
	}
}

// ConvertToolChoice converts a tool choice to a genai tool config.
func ConvertToolChoice(choice schemacompat.ToolChoice) *genai.ToolConfig {
	mode := genai.FunctionCallingConfigModeAuto
	switch choice {
	case schemacompat.ToolChoiceNone:
		mode = genai.FunctionCallingConfigModeNone
	case schemacompat.ToolChoiceRequired:
		mode = genai.FunctionCallingConfigModeAny
	}
	return &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
	}
}

// ExtractToolCalls extracts function calls from response parts. Calls
// without an ID are given a generated one.
func ExtractToolCalls(parts []*genai.Part) ([]schemacompat.ToolCall, error) {
	var calls []schemacompat.ToolCall
	for _, part := range parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		args, err := json.Marshal(part.FunctionCall.Args)
		if err != nil {
			return nil, fmt.Errorf("encode arguments for %s: %w", part.FunctionCall.Name, err)
		}
		id := part.FunctionCall.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		calls = append(calls, schemacompat.ToolCall{
			ID:        id,
			Name:      part.FunctionCall.Name,
			Arguments: string(args),
		})
	}
	return calls, nil
}

func nullablePair(s *jsonschema.Schema) (*jsonschema.Schema, bool) {
	if len(s.AnyOf) != 2 {
		return nil, false
	}
	for i, sub := range s.AnyOf {
		if sub != nil && sub.Type == "null" {
			return s.AnyOf[1-i], true
		}
	}
	return nil, false
}

func int64Ptr(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func floatPtr(v stdjson.Number) *float64 {
	if v == "" {
		return nil
	}
	f, err := v.Float64()
	if err != nil {
		return nil
	}
	return &f
}
