// Command schemacompat prepares schema files for a target model and checks
// model output against them.
//
// Usage:
//
//	schemacompat render [--model provider/id] [--strict] <schema.yaml>
//	schemacompat validate <schema.yaml> <value.json>
//
// The target model can also be set through the environment or a .env file:
//
//	SCHEMACOMPAT_PROVIDER=anthropic
//	SCHEMACOMPAT_MODEL=claude-3-5-haiku
//	SCHEMACOMPAT_STRUCTURED_OUTPUTS=false
//	SCHEMACOMPAT_LOG_LEVEL=debug
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errInvalidValue reports a value that failed validation. Its issues have
// already been printed.
var errInvalidValue = errors.New("value does not match schema")

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	os.Exit(run(cfg, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code: 0 on
// success, 1 when a value fails validation and 2 on usage or input errors.
func run(cfg *Config, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInvalidValue):
		return 1
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
}

func newRootCmd(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "schemacompat",
		Short: "Adapt schemas to what a model's tool calling supports",
		Long: `schemacompat renders schema files the way a given model can accept
them and validates model output against the original schema.

Constraints a model cannot express natively are folded into descriptions
and still enforced by validate.

Examples:
  schemacompat render --model anthropic/claude-3.5-haiku order.yaml
  schemacompat validate order.yaml output.json`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRenderCmd(cfg), newValidateCmd())
	return root
}
