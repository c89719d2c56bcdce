package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/erd/internal/cli/output"
	"github.com/leapstack-labs/erd/internal/state"
	"github.com/leapstack-labs/erd/pkg/dsl"
	"github.com/leapstack-labs/erd/pkg/schema"
)

// NewProjectCommand creates the project command and its subcommands.
func NewProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage diagrams stored in the project database",
		Long: `Save, load, list and delete diagrams kept in the state database
(state_path, default .erd/state.db).

Diagrams are stored as current schema envelopes and migrated on load.`,
	}

	cmd.AddCommand(newProjectSaveCommand())
	cmd.AddCommand(newProjectLoadCommand())
	cmd.AddCommand(newProjectListCommand())
	cmd.AddCommand(newProjectDeleteCommand())

	return cmd
}

func newProjectSaveCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "save <name> <file|->",
		Short: "Store a diagram under a project name",
		Example: `  # Create or update the "billing" project from DSL
  erd project save billing billing.erd`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := NewCommandContext(cmd)

			d, _, err := loadDiagram(cmd, cctx, args[1])
			if err != nil {
				return err
			}

			store, cleanup, err := cctx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := store.GetProject(args[0])
			if errors.Is(err, state.ErrNotFound) {
				p, err = store.CreateProject(args[0], description)
			}
			if err != nil {
				return err
			}

			if err := store.SaveDiagram(p.ID, *d); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Saved %s (%d tables)", p.Name, len(d.Tables)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Description for a new project")
	return cmd
}

func newProjectLoadCommand() *cobra.Command {
	var (
		outPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Print a stored diagram",
		Example: `  # Print as DSL
  erd project load billing --format dsl

  # Write the envelope to a file
  erd project load billing --out billing.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := NewCommandContext(cmd)

			store, cleanup, err := cctx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := store.GetProject(args[0])
			if err != nil {
				return err
			}
			d, err := store.LoadDiagram(p.ID)
			if err != nil {
				return err
			}

			var data []byte
			if format == sourceDSL {
				data = []byte(dsl.Format(*d, dsl.FormatOptions{IncludeHeader: cctx.Cfg.DSL.IncludeHeader}))
			} else {
				data, err = marshalEnvelope(schema.Encode(*d, schema.WithLogger(cctx.Logger)), format)
				if err != nil {
					return err
				}
			}
			return writeOutput(cmd, outPath, data)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of standard output")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml|dsl)")
	return cmd
}

func newProjectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx := NewCommandContext(cmd)
			r := cctx.Renderer

			store, cleanup, err := cctx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			projects, err := store.ListProjects()
			if err != nil {
				return err
			}

			list := output.ProjectListOutput{Projects: make([]output.ProjectInfo, 0, len(projects))}
			for _, p := range projects {
				info := output.ProjectInfo{
					ID:        p.ID,
					Name:      p.Name,
					Tables:    p.TableCount,
					UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02 15:04"),
				}
				if p.DataSchemaVersion != nil {
					info.SchemaVersion = *p.DataSchemaVersion
				}
				if p.LastOpenedAt != nil {
					info.LastOpenedAt = p.LastOpenedAt.UTC().Format("2006-01-02 15:04")
				}
				list.Projects = append(list.Projects, info)
			}

			mode := r.EffectiveMode()
			if mode == output.ModeJSON {
				return r.JSON(list)
			}
			if len(list.Projects) == 0 {
				r.Muted("No projects yet. Create one with: erd project save <name> <file>")
				return nil
			}

			rows := make([][]string, 0, len(list.Projects))
			for _, p := range list.Projects {
				version := "-"
				if p.SchemaVersion > 0 {
					version = "v" + strconv.Itoa(p.SchemaVersion)
				}
				opened := p.LastOpenedAt
				if opened == "" {
					opened = "never"
				}
				rows = append(rows, []string{p.Name, strconv.Itoa(p.Tables), version, p.UpdatedAt, opened})
			}
			r.Header(1, "Projects")
			output.Table(r.Writer(), mode == output.ModeMarkdown,
				[]string{"Name", "Tables", "Schema", "Updated", "Opened"}, rows)
			return nil
		},
	}
}

func newProjectDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := NewCommandContext(cmd)

			store, cleanup, err := cctx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.DeleteProject(args[0]); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Deleted %s", args[0]))
			return nil
		},
	}
}
