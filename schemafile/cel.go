package schemafile

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/2bigO/schemacompat/schema"
)

var celEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
})

type refinementSpec struct {
	Name    string `yaml:"name"`
	Rule    string `yaml:"rule"`
	Message string `yaml:"message"`
}

func parseRefinements(n schema.Node, v *yaml.Node, path string) (schema.Node, error) {
	var specs []refinementSpec
	if err := v.Decode(&specs); err != nil {
		return nil, wrapAt(v, path, "x-refine must be a list of {name, rule, message}", err)
	}
	for i, spec := range specs {
		itemPath := childPath(path, fmt.Sprint(i))
		line := v.Line
		if i < len(v.Content) {
			line = v.Content[i].Line
		}
		if spec.Rule == "" {
			return nil, &ParseError{Path: itemPath, Line: line, Message: "rule is required"}
		}
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("rule%d", i)
		}
		check, err := CompileRule(spec.Name, spec.Rule, spec.Message)
		if err != nil {
			return nil, &ParseError{Path: itemPath, Line: line, Message: "invalid rule", Err: err}
		}
		if n, err = refine(n, spec.Name, check); err != nil {
			return nil, &ParseError{Path: itemPath, Line: line, Message: "cannot refine", Err: err}
		}
	}
	return n, nil
}

// CompileRule compiles a CEL expression into a refinement check. The
// expression sees the validated value as value and must yield a boolean.
// A false result fails with message, or a generic message naming the rule.
func CompileRule(name, expr, message string) (func(any) error, error) {
	env, err := celEnv()
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("rule must yield a boolean, not %s", out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	if message == "" {
		message = fmt.Sprintf("failed rule %s", name)
	}
	return func(v any) error {
		out, _, err := prg.Eval(map[string]any{"value": celValue(v)})
		if err != nil {
			return fmt.Errorf("rule %s: %w", name, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return fmt.Errorf("rule %s: result is not a boolean", name)
		}
		if !ok {
			return errors.New(message)
		}
		return nil
	}, nil
}

// celValue normalizes Go integers for CEL, which only knows int64.
func celValue(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return uint64(t)
	case uint32:
		return uint64(t)
	}
	return v
}
