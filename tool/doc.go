// Package tool manages tools declared with schema nodes.
//
// A [Registry] stores each tool's original parameter schema alongside its
// handler. [Registry.Tools] compiles the definitions for a specific model,
// degrading whatever the model's profile cannot express, and
// [Registry.Execute] checks every call against the original schema before the
// handler runs. A call the model got wrong comes back as an error result that
// names the failing paths.
//
// # Basic Usage
//
//	type WeatherArgs struct {
//	    Location string `json:"location" desc:"City name" min:"1"`
//	    Unit     string `json:"unit,omitempty" enum:"celsius,fahrenheit"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (string, error) {
//	            return lookup(args.Location, args.Unit)
//	        }),
//	)
//
//	tools, err := registry.Tools(schemacompat.Model{ID: "gpt-4o", Provider: schemacompat.ProviderOpenAI})
//	...
//	result, err := registry.Execute(ctx, call)
//
// # Supported Struct Tags
//
//	json:"name"      - Property name; omitempty makes the field optional
//	desc:"text"      - Description for the model
//	required:"true"  - Overrides optionality derived from pointers and omitempty
//	enum:"a,b,c"     - Allowed values (comma-separated)
//	min:"0"          - Minimum value, string length or item count
//	max:"100"        - Maximum value, string length or item count
//	format:"email"   - String format: email, url, uuid or date-time
package tool
