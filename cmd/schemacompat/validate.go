package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/2bigO/schemacompat/schema"
	"github.com/2bigO/schemacompat/schemafile"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema> <value.json>",
		Short: "Check a JSON value against a schema",
		Long: `Validate a JSON value against the original, undegraded schema. Prints
the decoded value on success and one issue per line on failure.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := schemafile.ParseFile(args[0])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var value any
			if err := json.Unmarshal(data, &value); err != nil {
				return fmt.Errorf("decode %s: %w", args[1], err)
			}

			res := schema.Validate(root, value)
			if !res.Success {
				for _, it := range res.Issues {
					fmt.Fprintln(cmd.OutOrStdout(), it.Error())
				}
				return errInvalidValue
			}
			return writeJSON(cmd.OutOrStdout(), res.Value)
		},
	}
}
