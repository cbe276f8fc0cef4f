// Package schema models validation schemas as immutable node trees and
// validates values against them.
//
// A schema is built from typed nodes. Builder methods return modified copies,
// so a node can be shared between trees:
//
//	params := schema.Object(
//		schema.Prop("location", schema.String().Min(1).Describe("City name")),
//		schema.Prop("unit", schema.Optional(schema.Enum("celsius", "fahrenheit"))),
//		schema.Prop("days", schema.Int().Min(1).Max(14)),
//	).Strict()
//
// Every node reports a coarse Kind used by compatibility layers to pick a
// handler, and a fine-grained TypeName:
//
//	schema.Classify(schema.Email())      // KindString
//	schema.TypeOf(schema.Tuple(a, b))    // "tuple"
//
// # Validation
//
// Validate checks a value and returns a Result rather than an error:
//
//	res := schema.Validate(params, map[string]any{"location": "Paris", "days": 3})
//	if !res.Success {
//		fmt.Println(res.Issues)
//	}
//
// Values are typically decoded JSON. A nil value counts as absent and is
// accepted wherever the node is optional.
//
// # Refinements
//
// Refinements are named runtime checks that have no JSON Schema rendering:
//
//	even := schema.Int().Refine("even", func(v any) error {
//		if int(v.(float64))%2 != 0 {
//			return errors.New("must be even")
//		}
//		return nil
//	})
//
// # Struct Reflection
//
// For derives an object node from struct tags:
//
//	type Args struct {
//		City string `json:"city" desc:"City name" min:"1"`
//		Days int    `json:"days,omitempty" min:"1" max:"14"`
//	}
//	params := schema.MustFor[Args]()
package schema
