// Package openai converts compiled tools and processed schemas into
// openai-go request parameters.
package openai

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/internal/jsonorder"
)

// DefaultResponseSchemaName is used when a response format has no name.
const DefaultResponseSchemaName = "response_schema"

// ConvertTools converts compiled tools to OpenAI function tools. With strict
// set, every object schema is closed and the function is marked strict.
func ConvertTools(tools []*schemacompat.CompiledTool, strict bool) ([]openai.ChatCompletionToolParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		params, err := decode(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		if strict {
			addAdditionalPropertiesFalse(params)
		}
		fn := shared.FunctionDefinitionParam{
			Name: t.Name,
		}
		if params != nil {
			fn.Parameters = shared.FunctionParameters(jsonorder.Map(params))
		}
		if t.Description != "" {
			fn.Description = openai.String(t.Description)
		}
		if strict {
			fn.Strict = openai.Bool(true)
		}
		result[i] = openai.ChatCompletionToolParam{Function: fn}
	}
	return result, nil
}

// ResponseFormat builds a JSON schema response format from a processed
// schema.
func ResponseFormat(name, description string, p *schemacompat.Processed, strict bool) (openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	data, err := p.JSON()
	if err != nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{}, err
	}
	schema, err := decode(data)
	if err != nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{}, err
	}
	if name == "" {
		name = DefaultResponseSchemaName
	}

	// OpenAI strict mode requires additionalProperties: false on all objects
	if strict {
		addAdditionalPropertiesFalse(schema)
	}

	format := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   name,
		Schema: schema,
		Strict: openai.Bool(strict),
	}
	if description != "" {
		format.Description = openai.String(description)
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			Type:       "json_schema",
			JSONSchema: format,
		},
	}, nil
}

// ConvertToolChoice converts a tool choice to its OpenAI form.
func ConvertToolChoice(choice schemacompat.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch choice {
	case schemacompat.ToolChoiceNone:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("none"),
		}
	case schemacompat.ToolChoiceRequired:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("required"),
		}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}
}

// ExtractToolCalls extracts tool calls from a chat completion message.
func ExtractToolCalls(msg openai.ChatCompletionMessage) []schemacompat.ToolCall {
	if len(msg.ToolCalls) == 0 {
		return nil
	}
	result := make([]schemacompat.ToolCall, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		result[i] = schemacompat.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return result
}

// decode reads a rendered schema into ordered objects so properties reach
// the API in declaration order.
func decode(data []byte) (*jsonorder.Object, error) {
	if len(data) == 0 {
		return nil, nil
	}
	schema, err := jsonorder.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return schema, nil
}

// addAdditionalPropertiesFalse recursively adds additionalProperties: false to all object schemas.
// Records keep their value schema.
func addAdditionalPropertiesFalse(v any) {
	schema, ok := v.(*jsonorder.Object)
	if !ok || schema == nil {
		return
	}

	if schemaType, _ := schema.Get("type"); schemaType == "object" {
		ap, _ := schema.Get("additionalProperties")
		if _, isRecord := ap.(*jsonorder.Object); !isRecord {
			schema.Set("additionalProperties", false)
		}
	}

	if props, ok := schema.Get("properties"); ok {
		if propMap, ok := props.(*jsonorder.Object); ok {
			for pair := propMap.Oldest(); pair != nil; pair = pair.Next() {
				addAdditionalPropertiesFalse(pair.Value)
			}
		}
	}

	if items, ok := schema.Get("items"); ok {
		addAdditionalPropertiesFalse(items)
	}

	for _, key := range []string{"anyOf", "allOf", "prefixItems"} {
		list, _ := schema.Get(key)
		subs, _ := list.([]any)
		for _, sub := range subs {
			addAdditionalPropertiesFalse(sub)
		}
	}
}
