package main

import (
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/2bigO/schemacompat"
	"github.com/2bigO/schemacompat/profile"
	"github.com/2bigO/schemacompat/schemafile"
)

func newRenderCmd(cfg *Config) *cobra.Command {
	var (
		modelID string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "render <schema>",
		Short: "Print the schema a model is shown",
		Long: `Render a schema file for the target model. Degraded constraints are
logged at debug level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := cfg.TargetModel()
			if modelID != "" {
				model = schemacompat.ParseModel(modelID)
			}
			model.SupportsStructuredOutputs = strict

			root, err := schemafile.ParseFile(args[0])
			if err != nil {
				return err
			}

			logger := cfg.Logger(cmd.ErrOrStderr()).With("model", model.String())
			processed, err := profile.Apply(root, model, schemacompat.WithLogger(logger))
			if err != nil {
				return err
			}
			logger.Debug("rendered schema", "target", processed.Target)

			return writeJSON(cmd.OutOrStdout(), processed.Schema)
		},
	}

	cmd.Flags().StringVarP(&modelID, "model", "m", "", "target model as provider/id (overrides SCHEMACOMPAT_MODEL)")
	cmd.Flags().BoolVar(&strict, "strict", cfg.StructuredOutputs, "model supports native structured outputs")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
