// Package anthropic converts compiled tools and processed schemas into
// anthropic-sdk-go request parameters.
package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/internal/jsonorder"
)

// ResponseToolName is the name of the synthetic tool used to request
// structured output.
const ResponseToolName = "__schemacompat_response__"

// ConvertTools converts compiled tools to Anthropic tool parameters.
func ConvertTools(tools []*schemacompat.CompiledTool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		input, err := inputSchema(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			InputSchema: input,
		}
		if t.Description != "" {
			toolParam.Description = anthropic.String(t.Description)
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}
	return result, nil
}

// ResponseTool wraps a processed schema in a synthetic tool and a tool choice
// that forces the model to call it. The call's input is the structured
// response.
func ResponseTool(description string, p *schemacompat.Processed) (anthropic.ToolUnionParam, anthropic.ToolChoiceUnionParam, error) {
	data, err := p.JSON()
	if err != nil {
		return anthropic.ToolUnionParam{}, anthropic.ToolChoiceUnionParam{}, err
	}
	input, err := inputSchema(data)
	if err != nil {
		return anthropic.ToolUnionParam{}, anthropic.ToolChoiceUnionParam{}, err
	}
	if description == "" {
		description = "Output the response as structured JSON"
	}

	tool := anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        ResponseToolName,
			Description: anthropic.String(description),
			InputSchema: input,
		},
	}
	choice := anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: ResponseToolName},
	}
	return tool, choice, nil
}

// ConvertToolChoice converts a tool choice to its Anthropic form.
func ConvertToolChoice(choice schemacompat.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case schemacompat.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{
			OfNone: &anthropic.ToolChoiceNoneParam{},
		}
	case schemacompat.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		}
	default:
		return anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}
}

// ExtractToolCalls extracts tool_use blocks from message content.
func ExtractToolCalls(content []anthropic.ContentBlockUnion) []schemacompat.ToolCall {
	var calls []schemacompat.ToolCall
	for _, block := range content {
		if block.Type == "tool_use" {
			calls = append(calls, schemacompat.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	return calls
}

// inputSchema splits a rendered object schema into the properties and
// required list Anthropic expects. Other keywords at the top level are
// carried in ExtraFields. Properties keep their rendered order.
func inputSchema(data []byte) (anthropic.ToolInputSchemaParam, error) {
	var input anthropic.ToolInputSchemaParam
	if len(data) == 0 {
		return input, nil
	}
	schema, err := jsonorder.DecodeObject(data)
	if err != nil {
		return input, fmt.Errorf("decode schema: %w", err)
	}

	extra := map[string]any{}
	for pair := schema.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case "type", "$schema":
		case "properties":
			input.Properties = pair.Value
		case "required":
			list, _ := pair.Value.([]any)
			for _, r := range list {
				if s, ok := r.(string); ok {
					input.Required = append(input.Required, s)
				}
			}
		default:
			extra[pair.Key] = pair.Value
		}
	}
	if len(extra) > 0 {
		input.ExtraFields = extra
	}
	return input, nil
}
