package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/erd/pkg/schema"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display erd version and the diagram schema versions it reads and writes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "erd v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Diagram schema v%d (reads v%d and later, plus legacy data)\n",
				schema.CurrentVersion, schema.MinSupportedVersion)
		},
	}
}
