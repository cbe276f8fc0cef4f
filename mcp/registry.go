package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/retry"
	"github.com/2bigO/schemacompat/tool"
)

// RemoteRegistry provides access to the tools of an MCP server.
//
// RemoteRegistry is safe for concurrent use. The tool list is cached
// locally and can be refreshed with [RemoteRegistry.Refresh].
type RemoteRegistry struct {
	client *client.Client
	logger *slog.Logger
	retry  retry.Config
	mu     sync.RWMutex
	tools  map[string]schemacompat.Tool
}

// RemoteOption configures a RemoteRegistry.
type RemoteOption func(*RemoteRegistry)

// WithRetry sets how session setup and tool listing are retried on
// transient failures. Tool calls are never retried. The default is
// [retry.DefaultConfig].
func WithRetry(cfg retry.Config) RemoteOption {
	return func(r *RemoteRegistry) {
		r.retry = cfg
	}
}

// WithRemoteLogger sets the logger for skipped tools and retries.
func WithRemoteLogger(logger *slog.Logger) RemoteOption {
	return func(r *RemoteRegistry) {
		r.logger = logger
	}
}

// NewRemoteRegistry creates a RemoteRegistry connected to an MCP server via stdio.
// The command is the path to the MCP server executable, and args are passed to it.
func NewRemoteRegistry(ctx context.Context, command string, env, args []string, opts ...RemoteOption) (*RemoteRegistry, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	return NewRemoteRegistryFromClient(ctx, c, opts...)
}

// NewRemoteRegistrySSE creates a RemoteRegistry connected to an MCP server via SSE.
func NewRemoteRegistrySSE(ctx context.Context, baseURL string, opts ...RemoteOption) (*RemoteRegistry, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}

	return NewRemoteRegistryFromClient(ctx, c, opts...)
}

// NewRemoteRegistryFromClient creates a RemoteRegistry from an existing MCP
// client. It starts and initializes the client, then fetches the tool list.
func NewRemoteRegistryFromClient(ctx context.Context, c *client.Client, opts ...RemoteOption) (*RemoteRegistry, error) {
	r := &RemoteRegistry{
		client: c,
		logger: slog.Default(),
		retry:  retry.DefaultConfig(),
		tools:  make(map[string]schemacompat.Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := retry.Do(ctx, r.retry, r.logRetry("initialize"), func(ctx context.Context) (*mcp.InitializeResult, error) {
		return c.Initialize(ctx, mcp.InitializeRequest{
			Params: mcp.InitializeParams{
				ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
				Capabilities:    mcp.ClientCapabilities{},
				ClientInfo: mcp.Implementation{
					Name:    "schemacompat-mcp-client",
					Version: "1.0.0",
				},
			},
		})
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	return r, nil
}

func (r *RemoteRegistry) logRetry(op string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		r.logger.Warn("retrying MCP request", "op", op, "attempt", attempt, "delay", delay, "error", err)
	}
}

// Close closes the connection to the MCP server.
func (r *RemoteRegistry) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the MCP server, retrying
// transient failures. Tools whose input schema cannot be parsed are skipped
// and logged.
func (r *RemoteRegistry) Refresh(ctx context.Context) error {
	result, err := retry.Do(ctx, r.retry, r.logRetry("tools/list"), func(ctx context.Context) (*mcp.ListToolsResult, error) {
		return r.client.ListTools(ctx, mcp.ListToolsRequest{})
	})
	if err != nil {
		return err
	}

	tools := make(map[string]schemacompat.Tool, len(result.Tools))
	for _, t := range result.Tools {
		def, err := FromMCPTool(t)
		if err != nil {
			r.logger.Warn("skipping remote tool", "tool", t.Name, "error", err)
			continue
		}
		tools[t.Name] = def
	}

	r.mu.Lock()
	r.tools = tools
	r.mu.Unlock()
	return nil
}

// Tools returns all tools available from the MCP server, sorted by name.
func (r *RemoteRegistry) Tools() []schemacompat.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]schemacompat.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// GetTool retrieves a tool definition by name.
func (r *RemoteRegistry) GetTool(name string) (schemacompat.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Has returns true if the registry has a tool with the given name.
func (r *RemoteRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Len returns the number of available tools.
func (r *RemoteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute calls a tool on the remote MCP server. Transport failures are
// returned as error results.
func (r *RemoteRegistry) Execute(ctx context.Context, call schemacompat.ToolCall) (schemacompat.ToolResult, error) {
	result, err := r.client.CallTool(ctx, ToMCPCallToolRequest(call))
	if err != nil {
		return schemacompat.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}

	return FromMCPCallToolResult(call.ID, result), nil
}

// RegisterTo registers every remote tool with a local registry. Calls made
// through the local registry are validated locally and then forwarded.
func (r *RemoteRegistry) RegisterTo(local *tool.Registry) error {
	for _, t := range r.Tools() {
		if err := local.Register(t, r.forward); err != nil {
			return err
		}
	}
	return nil
}

func (r *RemoteRegistry) forward(ctx context.Context, call schemacompat.ToolCall) (string, error) {
	result, err := r.Execute(ctx, call)
	if err != nil {
		return "", err
	}
	if result.IsError {
		return "", &RemoteError{Tool: call.Name, Message: result.Content}
	}
	return result.Content, nil
}

// RemoteError is a tool failure reported by the MCP server.
type RemoteError struct {
	Tool    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mcp: remote tool %s failed", e.Tool)
	}
	return e.Message
}
