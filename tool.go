package schemacompat

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/2bigO/schemacompat/schema"
)

// Tool defines a function that can be called by the model.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string
	// Description explains what the tool does (helps the model decide when to use it).
	Description string
	// Parameters describes the arguments. It is usually an object node.
	Parameters schema.Node
}

// CompiledTool is a tool definition prepared for one model.
type CompiledTool struct {
	Name        string
	Description string
	// Schema is the rendered parameter schema.
	Schema *jsonschema.Schema
	// Target is the dialect Schema is written in.
	Target Target
	// Parameters is Schema encoded as JSON.
	Parameters json.RawMessage
	// Validate checks arguments against the original parameter schema.
	Validate schema.Validator
}

// Compile prepares the tool for the first applicable layer, or renders it
// undegraded when none applies.
func (t Tool) Compile(layers ...*Layer) (*CompiledTool, error) {
	if t.Name == "" {
		return nil, errors.New("schemacompat: tool name is required")
	}
	params := t.Parameters
	if params == nil {
		params = schema.Object()
	}
	p, err := Apply(params, layers...)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.Name, err)
	}
	data, err := p.JSON()
	if err != nil {
		return nil, fmt.Errorf("tool %s: encode parameters: %w", t.Name, err)
	}
	return &CompiledTool{
		Name:        t.Name,
		Description: t.Description,
		Schema:      p.Schema,
		Target:      p.Target,
		Parameters:  data,
		Validate:    p.Validate,
	}, nil
}

// ToolCall represents a request from the model to invoke a tool.
type ToolCall struct {
	// ID is a unique identifier for this tool call (used to match results).
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Arguments is a JSON string containing the arguments to pass.
	Arguments string `json:"arguments"`
}

// ToolResult represents the result of executing a tool call.
type ToolResult struct {
	// ToolCallID matches the ID from the corresponding ToolCall.
	ToolCallID string `json:"toolCallId"`
	// Content is the result content to return to the model.
	Content string `json:"content"`
	// IsError indicates if the result represents an error.
	IsError bool `json:"isError,omitempty"`
}

// ToolChoice controls how the model uses tools.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide when to use tools (default).
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone disables tool use for the request.
	ToolChoiceNone ToolChoice = "none"
	// ToolChoiceRequired forces the model to use a tool.
	ToolChoiceRequired ToolChoice = "required"
)
