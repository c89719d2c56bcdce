package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/erd/pkg/schema"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var (
		outPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Convert DSL or stored data into a current schema envelope",
		Long: `Read an ER diagram and write it as a schema envelope at the current version.

The input may be DSL text, a JSON envelope, a bare legacy diagram, or YAML.
DSL input is laid out automatically; stored data from older versions is
migrated. Use "-" to read standard input.`,
		Example: `  # Convert a DSL file to JSON
  erd import schema.erd --out schema.json

  # Upgrade an old export and print it as YAML
  erd import old.json --format yaml

  # Read from a pipe
  cat schema.erd | erd import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], outPath, format)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of standard output")
	cmd.Flags().StringVar(&format, "format", "json", "Envelope format (json|yaml)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runImport(cmd *cobra.Command, arg, outPath, format string) error {
	cctx := NewCommandContext(cmd)

	d, source, err := loadDiagram(cmd, cctx, arg)
	if err != nil {
		return err
	}

	env := schema.Encode(*d, schema.WithLogger(cctx.Logger))
	data, err := marshalEnvelope(env, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, outPath, data); err != nil {
		return err
	}

	cctx.Logger.Info("imported diagram",
		slog.String("source", source),
		slog.Int("tables", len(env.Diagram.Tables)),
		slog.Int("relations", len(env.Diagram.Relations)))

	if outPath != "" && outPath != stdinArg {
		cctx.Renderer.Success(fmt.Sprintf("Wrote %s (%d tables, schema v%d)", outPath, len(env.Diagram.Tables), env.SchemaVersion))
	}
	return nil
}
