package tool

import (
	"context"

	"github.com/2bigO/schemacompat"
)

// Handler executes a tool call whose arguments have already passed
// validation. It returns the result content, or an error the model can see.
type Handler func(ctx context.Context, call schemacompat.ToolCall) (string, error)

// TypedHandler executes a tool call with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
