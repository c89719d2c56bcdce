package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/erd/pkg/dsl"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		outPath  string
		noHeader bool
	)

	cmd := &cobra.Command{
		Use:   "export <file|->",
		Short: "Print a diagram as DSL text",
		Long: `Read an ER diagram and print it in the ER diagram DSL.

The input may be a schema envelope, a legacy diagram, YAML, or DSL itself
(which normalizes it). Positions are not part of the DSL and are dropped.`,
		Example: `  # Export a saved diagram
  erd export schema.json

  # Export without the generated header
  erd export schema.json --no-header --out schema.erd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], outPath, noHeader)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of standard output")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the generated header comment")

	return cmd
}

func runExport(cmd *cobra.Command, arg, outPath string, noHeader bool) error {
	cctx := NewCommandContext(cmd)

	d, _, err := loadDiagram(cmd, cctx, arg)
	if err != nil {
		return err
	}

	text := dsl.Format(*d, dsl.FormatOptions{
		IncludeHeader: cctx.Cfg.DSL.IncludeHeader && !noHeader,
	})
	if err := writeOutput(cmd, outPath, []byte(text)); err != nil {
		return err
	}

	if outPath != "" && outPath != stdinArg {
		cctx.Renderer.Success(fmt.Sprintf("Wrote %s (%d tables)", outPath, len(d.Tables)))
	}
	return nil
}
