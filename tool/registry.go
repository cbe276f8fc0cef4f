package tool

import (
	"context"
	"log/slog"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/profile"
	"github.com/2bigO/schemacompat/schema"
)

// registeredTool combines a tool definition with its handler.
type registeredTool struct {
	tool     schemacompat.Tool
	handler  Handler
	validate schema.Validator
}

// Registry manages registered tools and their handlers.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]registeredTool
	order     []string
	logger    *slog.Logger
	layerOpts []schemacompat.LayerOption
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for rejected calls and compiled layers.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithLayerOptions passes options to every profile layer built by Tools.
func WithLayerOptions(opts ...schemacompat.LayerOption) Option {
	return func(r *Registry) {
		r.layerOpts = append(r.layerOpts, opts...)
	}
}

// NewRegistry creates an empty tool registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools:  make(map[string]registeredTool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool with its handler to the registry.
// Returns an error if a tool with the same name is already registered.
func (r *Registry) Register(tool schemacompat.Tool, handler Handler) error {
	if tool.Name == "" {
		return &ErrInvalidTool{Reason: "name is required"}
	}
	if handler == nil {
		return &ErrInvalidTool{Name: tool.Name, Reason: "handler is nil"}
	}
	if tool.Parameters == nil {
		tool.Parameters = schema.Object()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: tool.Name}
	}

	r.tools[tool.Name] = registeredTool{
		tool:     tool,
		handler:  handler,
		validate: schema.ValidatorFor(tool.Parameters),
	}
	r.order = append(r.order, tool.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool schemacompat.Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Unregister removes a tool from the registry.
// It is a no-op if the tool is not registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Get retrieves a handler by tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.handler, true
}

// GetTool retrieves a tool definition by name.
func (r *Registry) GetTool(name string) (schemacompat.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return schemacompat.Tool{}, false
	}
	return rt.tool, true
}

// Definitions returns all registered tool definitions in registration order.
func (r *Registry) Definitions() []schemacompat.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]schemacompat.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].tool)
	}
	return tools
}

// Tools compiles every registered tool for m with the default profiles, in
// registration order.
func (r *Registry) Tools(m schemacompat.Model) ([]*schemacompat.CompiledTool, error) {
	opts := append([]schemacompat.LayerOption{schemacompat.WithLogger(r.logger)}, r.layerOpts...)
	layers := profile.Default(m, opts...)

	defs := r.Definitions()
	compiled := make([]*schemacompat.CompiledTool, 0, len(defs))
	for _, t := range defs {
		ct, err := t.Compile(layers...)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, ct)
	}
	return compiled, nil
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute validates the call's arguments against the tool's original
// parameter schema and runs its handler.
// If the tool is not found, returns ErrToolNotFound.
// Invalid arguments and handler errors are returned as error results so the
// model can correct itself and retry.
func (r *Registry) Execute(ctx context.Context, call schemacompat.ToolCall) (schemacompat.ToolResult, error) {
	r.mu.RLock()
	rt, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return schemacompat.ToolResult{}, &ErrToolNotFound{Name: call.Name}
	}

	var args any
	if err := json.Unmarshal(arguments(call), &args); err != nil {
		r.logger.Debug("rejected tool call", "tool", call.Name, "error", err)
		return errorResult(call, "invalid arguments: "+err.Error()), nil
	}
	if res := rt.validate(args); !res.Success {
		r.logger.Debug("rejected tool call", "tool", call.Name, "issues", len(res.Issues))
		return errorResult(call, "invalid arguments: "+res.Issues.Error()), nil
	}

	content, err := rt.handler(ctx, call)
	if err != nil {
		return errorResult(call, err.Error()), nil
	}

	return schemacompat.ToolResult{
		ToolCallID: call.ID,
		Content:    content,
	}, nil
}

func errorResult(call schemacompat.ToolCall, content string) schemacompat.ToolResult {
	return schemacompat.ToolResult{
		ToolCallID: call.ID,
		Content:    content,
		IsError:    true,
	}
}

// Registration holds a tool and its handler for fluent registration.
type Registration struct {
	Tool    schemacompat.Tool
	Handler Handler
}

// Func creates a Registration with parameters reflected from T.
// Panics if T cannot be reflected.
//
// Example:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("weather", "Get weather", func(ctx context.Context, args WeatherArgs) (string, error) {
//	        return getWeather(args.Location), nil
//	    }),
//	)
func Func[T any](name, description string, fn TypedHandler[T]) Registration {
	t, h := MustBind(name, description, fn)
	return Registration{Tool: t, Handler: h}
}

// WithTool creates a Registration from an existing Tool and Handler.
func WithTool(t schemacompat.Tool, h Handler) Registration {
	return Registration{Tool: t, Handler: h}
}

// Add registers one or more tools to the registry.
// Panics if any tool is already registered.
func (r *Registry) Add(regs ...Registration) *Registry {
	for _, reg := range regs {
		r.MustRegister(reg.Tool, reg.Handler)
	}
	return r
}
