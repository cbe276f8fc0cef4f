// Package schemacompat adapts validation schemas to the tool-calling
// capabilities of individual language models.
//
// A model is shown a rendered JSON Schema, possibly weaker than the schema it
// was derived from: constraints the model cannot express natively are removed
// and folded into the description as a JSON hint. Output is still checked
// against the original schema, so nothing is lost at enforcement time.
//
// # Core Types
//
//   - [Layer]: a capability profile plus a per-kind dispatch table
//   - [Processed]: the rendered schema together with a validator bound to the
//     original tree
//   - [Tool]: a tool definition whose parameters are a [schema.Node]
//
// Ready-made layers for the major providers live in the
// [github.com/2bigO/schemacompat/profile] package.
//
// # Basic Usage
//
//	params := schema.Object(
//	    schema.Prop("city", schema.String().Min(1).Describe("City name")),
//	    schema.Prop("days", schema.Int().Min(1).Max(14)),
//	)
//
//	layer := schemacompat.NewLayer(schemacompat.Model{ID: "claude-3-5-sonnet"})
//	p, err := layer.ProcessToSchema(params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data, _ := p.JSON()
//	// {"$schema":"http://json-schema.org/draft-07/schema#","type":"object",
//	//  "properties":{"city":{"type":"string","description":"City name\n{\"minLength\":1}"}, ...
//
//	res := p.Validate(map[string]any{"city": "", "days": 3})
//	fmt.Println(res.Success) // false: the original minLength still applies
//
// # Custom Handlers
//
// A layer overrides only the kinds whose capability differs and falls back
// to the default handlers for the rest:
//
//	layer := schemacompat.NewLayer(model,
//	    schemacompat.WithHandlers(schemacompat.Handlers{
//	        Array: func(l *schemacompat.Layer, n *schema.ArrayNode) (schema.Node, error) {
//	            return l.ArrayHandler(n, schemacompat.ArrayMin)
//	        },
//	    }),
//	)
//
// # Selecting a Layer
//
// [Apply] processes a schema with the first layer whose ShouldApply reports
// true, and renders the schema undegraded when none does.
//
// # Error Handling
//
// Handlers fail with [*UnsupportedTypeError] for node types a model refuses
// and with [schema.ErrUnionArity] for malformed unions. Validation failures
// are returned as [schema.Result] values, never as errors.
package schemacompat
