package mcp

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	model   schemacompat.Model
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithModel sets the model tool schemas are compiled for. Without it, schemas
// are published undegraded.
func WithModel(m schemacompat.Model) ServerOption {
	return func(c *serverConfig) {
		c.model = m
	}
}

// NewServer creates an MCP server that exposes the tools of registry. Each
// tool's schema is compiled for the configured model, and calls are executed
// through the registry so arguments are validated against the original
// schema first.
//
// Example:
//
//	mcpServer, err := mcp.NewServer(registry,
//	    mcp.WithName("my-tools"),
//	    mcp.WithModel(schemacompat.Model{ID: "claude-3-5-sonnet", Provider: schemacompat.ProviderAnthropic}),
//	)
func NewServer(registry *tool.Registry, opts ...ServerOption) (*server.MCPServer, error) {
	cfg := &serverConfig{
		name:    "schemacompat-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	compiled, err := registry.Tools(cfg.model)
	if err != nil {
		return nil, fmt.Errorf("compile tools: %w", err)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)
	for _, t := range compiled {
		s.AddTool(ToMCPTool(t), createMCPHandler(t.Name, registry))
	}
	return s, nil
}

// createMCPHandler routes an MCP call through the registry.
func createMCPHandler(toolName string, registry *tool.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsJSON := "{}"
		if req.Params.Arguments != nil {
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
			}
			argsJSON = string(data)
		}

		result, err := registry.Execute(ctx, schemacompat.ToolCall{
			Name:      toolName,
			Arguments: argsJSON,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return ToMCPCallToolResult(result), nil
	}
}

// ServeStdio serves the registry over stdin/stdout, the standard transport
// for MCP servers started as subprocesses.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	s, err := NewServer(registry, opts...)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
