package schemacompat

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/2bigO/schemacompat/schema"
)

// Target is the JSON Schema dialect a layer renders into.
type Target string

// Supported dialects.
const (
	TargetJSONSchema7    Target = "jsonSchema7"
	TargetJSONSchema2019 Target = "jsonSchema2019-09"
	TargetOpenAPI3       Target = "openApi3"
)

// DefaultUnsupportedTypes are the types DefaultUnsupportedHandler refuses
// unless a layer is configured otherwise.
var DefaultUnsupportedTypes = []schema.TypeName{
	schema.TypeIntersection,
	schema.TypeNever,
	schema.TypeNull,
	schema.TypeTuple,
	schema.TypeUndefined,
}

// Handlers overrides the handling of individual node kinds. A nil entry uses
// the layer's default handler for that kind. Overrides receive the layer so
// they can dispatch children or fall back to a default.
type Handlers struct {
	Object   func(l *Layer, n *schema.ObjectNode) (schema.Node, error)
	Array    func(l *Layer, n *schema.ArrayNode) (schema.Node, error)
	Union    func(l *Layer, n *schema.UnionNode) (schema.Node, error)
	Optional func(l *Layer, n *schema.OptionalNode) (schema.Node, error)
	String   func(l *Layer, n *schema.StringNode) (schema.Node, error)
	Number   func(l *Layer, n *schema.NumberNode) (schema.Node, error)
	Date     func(l *Layer, n *schema.DateNode) (schema.Node, error)
	Other    func(l *Layer, n *schema.OtherNode) (schema.Node, error)
}

// Layer adapts schema trees to the capabilities of one model. It pairs a
// capability profile (ShouldApply, SchemaTarget) with a per-kind dispatch
// table. A Layer is immutable after construction and safe for concurrent use.
type Layer struct {
	model       Model
	target      Target
	applies     func(Model) bool
	handlers    Handlers
	unsupported []schema.TypeName
	logger      *slog.Logger
}

// LayerOption configures a Layer.
type LayerOption func(*Layer)

// WithTarget sets the rendered dialect. The default is TargetJSONSchema7.
func WithTarget(t Target) LayerOption {
	return func(l *Layer) {
		l.target = t
	}
}

// WithApplies sets the predicate behind ShouldApply. By default a layer
// always applies.
func WithApplies(fn func(Model) bool) LayerOption {
	return func(l *Layer) {
		l.applies = fn
	}
}

// WithHandlers sets per-kind overrides.
func WithHandlers(h Handlers) LayerOption {
	return func(l *Layer) {
		l.handlers = h
	}
}

// WithUnsupportedTypes sets the types DefaultUnsupportedHandler refuses.
// Passing no types makes every other-kind node pass through.
func WithUnsupportedTypes(types ...schema.TypeName) LayerOption {
	return func(l *Layer) {
		l.unsupported = slices.Clone(types)
	}
}

// WithLogger sets the logger used to report degraded constraints.
func WithLogger(logger *slog.Logger) LayerOption {
	return func(l *Layer) {
		l.logger = logger
	}
}

// NewLayer creates a layer for model m.
func NewLayer(m Model, opts ...LayerOption) *Layer {
	l := &Layer{
		model:       m,
		target:      TargetJSONSchema7,
		unsupported: slices.Clone(DefaultUnsupportedTypes),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// ShouldApply reports whether this layer's degrade policy should run for its
// model.
func (l *Layer) ShouldApply() bool {
	if l.applies == nil {
		return true
	}
	return l.applies(l.model)
}

// SchemaTarget returns the dialect processed trees are rendered into.
func (l *Layer) SchemaTarget() Target { return l.target }

// ModelID returns the model identifier used in error messages.
func (l *Layer) ModelID() string { return l.model.ID }

// Model returns the model the layer was built for.
func (l *Layer) Model() Model { return l.model }

// Logger returns the layer's logger.
func (l *Layer) Logger() *slog.Logger { return l.logger }

// Process rewrites n for the layer's model, routing every node to the
// override for its kind or to the default handler.
func (l *Layer) Process(n schema.Node) (schema.Node, error) {
	switch t := n.(type) {
	case *schema.ObjectNode:
		if h := l.handlers.Object; h != nil {
			return h(l, t)
		}
		return l.DefaultObjectHandler(t)
	case *schema.ArrayNode:
		if h := l.handlers.Array; h != nil {
			return h(l, t)
		}
		return l.DefaultArrayHandler(t)
	case *schema.UnionNode:
		if h := l.handlers.Union; h != nil {
			return h(l, t)
		}
		return l.DefaultUnionHandler(t)
	case *schema.OptionalNode:
		if h := l.handlers.Optional; h != nil {
			return h(l, t)
		}
		return l.DefaultOptionalHandler(t)
	case *schema.StringNode:
		if h := l.handlers.String; h != nil {
			return h(l, t)
		}
		return l.DefaultStringHandler(t)
	case *schema.NumberNode:
		if h := l.handlers.Number; h != nil {
			return h(l, t)
		}
		return l.DefaultNumberHandler(t)
	case *schema.DateNode:
		if h := l.handlers.Date; h != nil {
			return h(l, t)
		}
		return l.DefaultDateHandler(t)
	case *schema.OtherNode:
		if h := l.handlers.Other; h != nil {
			return h(l, t)
		}
		return l.DefaultUnsupportedHandler(t)
	case nil:
		return nil, &schema.DefinitionError{Path: "/", Message: "nil node"}
	default:
		return nil, fmt.Errorf("schemacompat: unknown node type %T", n)
	}
}

func (l *Layer) logDegraded(n schema.Node, c *Constraints) {
	if c.Len() == 0 {
		return
	}
	l.logger.Debug("degraded schema constraints",
		"model", l.model.ID,
		"type", string(n.TypeName()),
		"constraints", c.Keys(),
	)
}
