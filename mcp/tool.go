// Package mcp exposes schemacompat tools over the Model Context Protocol.
//
// It works in both directions:
//
//   - Server: expose a [tool.Registry] as an MCP server. Tool schemas are
//     compiled for a chosen model, and every call is checked against the
//     original schema before the handler runs.
//   - Client: connect to an MCP server through [RemoteRegistry]. Remote input
//     schemas are parsed back into schema trees, so remote tools can be
//     compiled for any model and their arguments validated locally.
//
// # Exposing Tools as an MCP Server
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("weather", "Get weather", weatherHandler),
//	)
//
//	if err := mcp.ServeStdio(registry, mcp.WithModel(model)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Consuming MCP Servers
//
//	remote, err := mcp.NewRemoteRegistry(ctx, "./my-mcp-server", nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//
//	local := tool.NewRegistry()
//	if err := remote.RegisterTo(local); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/schema"
	"github.com/2bigO/schemacompat/schemafile"
)

// ToMCPTool converts a compiled tool to an MCP tool. The rendered parameter
// schema is used as the raw input schema.
func ToMCPTool(t *schemacompat.CompiledTool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// ToMCPTools converts compiled tools to MCP tools.
func ToMCPTools(tools []*schemacompat.CompiledTool) []mcp.Tool {
	result := make([]mcp.Tool, len(tools))
	for i, t := range tools {
		result[i] = ToMCPTool(t)
	}
	return result
}

// InputSchema returns the JSON input schema of an MCP tool, preferring the
// raw schema when one is set.
func InputSchema(t mcp.Tool) ([]byte, error) {
	if len(t.RawInputSchema) > 0 {
		return []byte(t.RawInputSchema), nil
	}
	return json.Marshal(t.InputSchema)
}

// FromMCPTool converts an MCP tool into a tool definition by parsing its
// input schema into a schema tree.
func FromMCPTool(t mcp.Tool) (schemacompat.Tool, error) {
	raw, err := InputSchema(t)
	if err != nil {
		return schemacompat.Tool{}, err
	}
	params, err := schemafile.Parse(raw)
	if err != nil {
		return schemacompat.Tool{}, err
	}
	if !schema.IsObject(params) {
		params = schema.Object()
	}
	return schemacompat.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}, nil
}

// ToMCPCallToolRequest converts a tool call to an MCP request.
func ToMCPCallToolRequest(call schemacompat.ToolCall) mcp.CallToolRequest {
	var args any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			// Not JSON; pass the text through.
			args = call.Arguments
		}
	}

	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      call.Name,
			Arguments: args,
		},
	}
}

// FromMCPCallToolResult converts an MCP result into a tool result. Text
// content is joined with newlines; other content is encoded as JSON.
func FromMCPCallToolResult(callID string, result *mcp.CallToolResult) schemacompat.ToolResult {
	if result == nil {
		return schemacompat.ToolResult{ToolCallID: callID, IsError: true}
	}

	var textParts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			textParts = append(textParts, content.Text)
		case *mcp.TextContent:
			textParts = append(textParts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				textParts = append(textParts, string(data))
			}
		}
	}

	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			textParts = append(textParts, string(data))
		}
	}

	return schemacompat.ToolResult{
		ToolCallID: callID,
		Content:    strings.Join(textParts, "\n"),
		IsError:    result.IsError,
	}
}

// ToMCPCallToolResult converts a tool result to an MCP result.
func ToMCPCallToolResult(result schemacompat.ToolResult) *mcp.CallToolResult {
	if result.IsError {
		return mcp.NewToolResultError(result.Content)
	}
	return mcp.NewToolResultText(result.Content)
}
