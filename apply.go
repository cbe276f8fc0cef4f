package schemacompat

import (
	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/2bigO/schemacompat/schema"
)

// Processed is a schema prepared for one model: what the model is shown and
// what is enforced on its output.
type Processed struct {
	// Schema is the rendered, possibly degraded, JSON Schema.
	Schema *jsonschema.Schema
	// Target is the dialect Schema is written in.
	Target Target
	// Node is the rewritten tree Schema was rendered from.
	Node schema.Node
	// Validate checks values against the original, undegraded tree.
	Validate schema.Validator
}

// JSON returns the rendered schema as compact JSON.
func (p *Processed) JSON() ([]byte, error) {
	return json.Marshal(p.Schema)
}

// ProcessToSchema rewrites root through the layer, renders the result into
// the layer's target and pairs it with a validator bound to root itself.
func (l *Layer) ProcessToSchema(root schema.Node) (*Processed, error) {
	node, err := l.Process(root)
	if err != nil {
		return nil, err
	}
	rendered, err := Render(node, l.target)
	if err != nil {
		return nil, err
	}
	return &Processed{
		Schema:   rendered,
		Target:   l.target,
		Node:     node,
		Validate: schema.ValidatorFor(root),
	}, nil
}

// Apply processes root with the first layer that applies. When none does,
// root is rendered undegraded as JSON Schema draft-07.
func Apply(root schema.Node, layers ...*Layer) (*Processed, error) {
	for _, l := range layers {
		if l != nil && l.ShouldApply() {
			return l.ProcessToSchema(root)
		}
	}
	rendered, err := Render(root, TargetJSONSchema7)
	if err != nil {
		return nil, err
	}
	return &Processed{
		Schema:   rendered,
		Target:   TargetJSONSchema7,
		Node:     root,
		Validate: schema.ValidatorFor(root),
	}, nil
}
