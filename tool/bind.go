package tool

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/schema"
)

// Bind creates a Tool and Handler from a typed function. The parameter
// schema is reflected from the struct tags on T.
//
// Example:
//
//	type TranslateArgs struct {
//	    Text string `json:"text" desc:"Text to translate" min:"1"`
//	    To   string `json:"to" desc:"Target language" enum:"en,fr,de"`
//	}
//
//	t, h, err := tool.Bind("translate", "Translate text",
//	    func(ctx context.Context, args TranslateArgs) (string, error) {
//	        return translate(args.Text, args.To)
//	    })
func Bind[T any](name, description string, fn TypedHandler[T]) (schemacompat.Tool, Handler, error) {
	params, err := schema.For[T]()
	if err != nil {
		return schemacompat.Tool{}, nil, err
	}

	t := schemacompat.Tool{
		Name:        name,
		Description: description,
		Parameters:  params,
	}
	return t, typed(fn), nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](name, description string, fn TypedHandler[T]) (schemacompat.Tool, Handler) {
	t, h, err := Bind(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t, h
}

// BindTo binds fn and registers it with r.
func BindTo[T any](r *Registry, name, description string, fn TypedHandler[T]) error {
	t, h, err := Bind(name, description, fn)
	if err != nil {
		return err
	}
	return r.Register(t, h)
}

func typed[T any](fn TypedHandler[T]) Handler {
	return func(ctx context.Context, call schemacompat.ToolCall) (string, error) {
		var args T
		if err := json.Unmarshal(arguments(call), &args); err != nil {
			return "", err
		}
		return fn(ctx, args)
	}
}

func arguments(call schemacompat.ToolCall) []byte {
	if call.Arguments == "" {
		return []byte("{}")
	}
	return []byte(call.Arguments)
}
