package tool

import (
	"context"
	"errors"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/schema"
)

type testArgs struct {
	Query string `json:"query" desc:"Search query" min:"2"`
}

type calcArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

func TestRegistryAdd(t *testing.T) {
	t.Run("registers single tool with Func", func(t *testing.T) {
		registry := NewRegistry().Add(
			Func("search", "Search the web", func(ctx context.Context, args testArgs) (string, error) {
				return "result: " + args.Query, nil
			}),
		)

		assert.Equal(t, 1, registry.Len())
		handler, ok := registry.Get("search")
		assert.True(t, ok)
		assert.NotNil(t, handler)

		tool, ok := registry.GetTool("search")
		assert.True(t, ok)
		assert.Equal(t, "search", tool.Name)
		assert.Equal(t, "Search the web", tool.Description)
	})

	t.Run("keeps registration order", func(t *testing.T) {
		registry := NewRegistry().
			Add(Func("first", "First tool", func(ctx context.Context, args testArgs) (string, error) {
				return "first", nil
			})).
			Add(Func("second", "Second tool", func(ctx context.Context, args calcArgs) (string, error) {
				return "second", nil
			})).
			Add(Func("third", "Third tool", func(ctx context.Context, args testArgs) (string, error) {
				return "third", nil
			}))

		assert.Equal(t, []string{"first", "second", "third"}, registry.Names())

		registry.Unregister("second")
		registry.Unregister("missing")
		assert.Equal(t, []string{"first", "third"}, registry.Names())
		assert.Equal(t, 2, registry.Len())
	})

	t.Run("panics on duplicate tool name", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRegistry().Add(
				Func("dupe", "First", func(ctx context.Context, args testArgs) (string, error) {
					return "", nil
				}),
				Func("dupe", "Duplicate", func(ctx context.Context, args testArgs) (string, error) {
					return "", nil
				}),
			)
		})
	})
}

func TestRegister(t *testing.T) {
	noop := func(ctx context.Context, call schemacompat.ToolCall) (string, error) { return "", nil }

	t.Run("duplicate", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(schemacompat.Tool{Name: "a"}, noop))

		err := r.Register(schemacompat.Tool{Name: "a"}, noop)
		var dup *ErrToolAlreadyRegistered
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "a", dup.Name)
		assert.Equal(t, "tool: already registered: a", err.Error())
	})

	t.Run("invalid definitions", func(t *testing.T) {
		r := NewRegistry()
		var invalid *ErrInvalidTool
		assert.ErrorAs(t, r.Register(schemacompat.Tool{}, noop), &invalid)
		assert.ErrorAs(t, r.Register(schemacompat.Tool{Name: "a"}, nil), &invalid)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("nil parameters become an empty object", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(schemacompat.Tool{Name: "ping"}, noop))

		tool, _ := r.GetTool("ping")
		assert.True(t, schema.IsObject(tool.Parameters))
	})
}

func TestFunc(t *testing.T) {
	t.Run("creates Registration with reflected parameters", func(t *testing.T) {
		reg := Func("myTool", "My description", func(ctx context.Context, args testArgs) (string, error) {
			return args.Query, nil
		})

		assert.Equal(t, "myTool", reg.Tool.Name)
		assert.Equal(t, "My description", reg.Tool.Description)
		require.True(t, schema.IsObject(reg.Tool.Parameters))
		assert.Equal(t, []string{"query"}, reg.Tool.Parameters.(*schema.ObjectNode).Names())
		assert.NotNil(t, reg.Handler)
	})

	t.Run("handler correctly unmarshals arguments", func(t *testing.T) {
		reg := Func("test", "Test", func(ctx context.Context, args testArgs) (string, error) {
			return "got: " + args.Query, nil
		})

		result, err := reg.Handler(context.Background(), schemacompat.ToolCall{
			ID:        "call_1",
			Name:      "test",
			Arguments: `{"query": "hello world"}`,
		})

		require.NoError(t, err)
		assert.Equal(t, "got: hello world", result)
	})

	t.Run("handler returns error on invalid JSON", func(t *testing.T) {
		reg := Func("test", "Test", func(ctx context.Context, args testArgs) (string, error) {
			return args.Query, nil
		})

		_, err := reg.Handler(context.Background(), schemacompat.ToolCall{
			ID:        "call_1",
			Name:      "test",
			Arguments: `{invalid json}`,
		})

		assert.Error(t, err)
	})

	t.Run("panics when arguments are not a struct", func(t *testing.T) {
		assert.Panics(t, func() {
			Func("bad", "Bad", func(ctx context.Context, args string) (string, error) { return args, nil })
		})
	})
}

func TestWithTool(t *testing.T) {
	tool := schemacompat.Tool{
		Name:        "existing",
		Description: "Existing tool",
		Parameters:  schema.Object(schema.Prop("id", schema.UUID())),
	}
	handler := func(ctx context.Context, call schemacompat.ToolCall) (string, error) {
		return "handled", nil
	}

	reg := WithTool(tool, handler)

	assert.Equal(t, tool, reg.Tool)
	assert.NotNil(t, reg.Handler)
}

func TestRegistryTools(t *testing.T) {
	registry := NewRegistry().Add(
		Func("search", "Search the web", func(ctx context.Context, args testArgs) (string, error) {
			return "", nil
		}),
		Func("calc", "Add numbers", func(ctx context.Context, args calcArgs) (string, error) {
			return "", nil
		}),
	)

	t.Run("degrades for claude haiku", func(t *testing.T) {
		tools, err := registry.Tools(schemacompat.Model{ID: "claude-3.5-haiku", Provider: schemacompat.ProviderAnthropic})
		require.NoError(t, err)
		require.Len(t, tools, 2)

		assert.Equal(t, "search", tools[0].Name)
		assert.Equal(t, "calc", tools[1].Name)
		assert.JSONEq(t,
			`{"type":"object","properties":{"query":{"type":"string","description":"Search query\n{\"minLength\":2}"}},"required":["query"]}`,
			stripSchemaVersion(t, tools[0].Parameters))
	})

	t.Run("keeps bounds for gpt-4", func(t *testing.T) {
		tools, err := registry.Tools(schemacompat.Model{ID: "gpt-4", Provider: schemacompat.ProviderOpenAI})
		require.NoError(t, err)
		assert.Contains(t, string(tools[0].Parameters), `"minLength":2`)
	})
}

func TestRegistryExecute(t *testing.T) {
	var calls int
	registry := NewRegistry().Add(
		Func("greet", "Greet someone", func(ctx context.Context, args struct {
			Name string `json:"name" min:"1"`
		}) (string, error) {
			calls++
			return "Hello, " + args.Name + "!", nil
		}),
		WithTool(schemacompat.Tool{Name: "fail"}, func(ctx context.Context, call schemacompat.ToolCall) (string, error) {
			return "", errors.New("upstream unavailable")
		}),
	)

	t.Run("executes valid call", func(t *testing.T) {
		result, err := registry.Execute(context.Background(), schemacompat.ToolCall{
			ID:        "call_123",
			Name:      "greet",
			Arguments: `{"name": "World"}`,
		})

		require.NoError(t, err)
		assert.Equal(t, "call_123", result.ToolCallID)
		assert.Equal(t, "Hello, World!", result.Content)
		assert.False(t, result.IsError)
	})

	t.Run("rejects invalid arguments before the handler runs", func(t *testing.T) {
		before := calls
		result, err := registry.Execute(context.Background(), schemacompat.ToolCall{
			ID:        "call_124",
			Name:      "greet",
			Arguments: `{"name": ""}`,
		})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "call_124", result.ToolCallID)
		assert.Contains(t, result.Content, "invalid arguments: too_small at /name")
		assert.Equal(t, before, calls)
	})

	t.Run("reports missing fields", func(t *testing.T) {
		result, err := registry.Execute(context.Background(), schemacompat.ToolCall{Name: "greet"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "invalid arguments: required at /name: Required", result.Content)
	})

	t.Run("reports malformed JSON", func(t *testing.T) {
		result, err := registry.Execute(context.Background(), schemacompat.ToolCall{Name: "greet", Arguments: `{`})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "invalid arguments:")
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		result, err := registry.Execute(context.Background(), schemacompat.ToolCall{ID: "c", Name: "fail"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "upstream unavailable", result.Content)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := registry.Execute(context.Background(), schemacompat.ToolCall{Name: "missing"})
		var notFound *ErrToolNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.Name)
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry().Add(
		Func("echo", "Echo", func(ctx context.Context, args testArgs) (string, error) {
			return args.Query, nil
		}),
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := registry.Execute(context.Background(), schemacompat.ToolCall{
				Name:      "echo",
				Arguments: `{"query":"hi"}`,
			})
			assert.NoError(t, err)
			assert.Equal(t, "hi", result.Content)
			_ = registry.Names()
		}()
	}
	wg.Wait()
}

func stripSchemaVersion(t *testing.T, data []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
