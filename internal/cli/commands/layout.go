package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/erd/internal/cli/output"
	"github.com/leapstack-labs/erd/internal/dag"
	"github.com/leapstack-labs/erd/pkg/diagram"
	"github.com/leapstack-labs/erd/pkg/layout"
	"github.com/leapstack-labs/erd/pkg/schema"
)

// layoutView is what the layout renderers need.
type layoutView struct {
	diagram diagram.ERDiagram
	graph   *dag.Graph
	tiers   layout.Tiers
	names   map[string]string
	tables  map[string]diagram.Table
}

// NewLayoutCommand creates the layout command.
func NewLayoutCommand() *cobra.Command {
	var (
		outPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "layout <file|->",
		Short: "Show the hierarchical layout of a diagram",
		Long: `Compute the hierarchical layout of a diagram and show its tiers.

Tables without parents sit in tier 0; every other table sits one tier to the
right of its deepest parent. Tables caught in a reference cycle are forced
into tier 0 and reported.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)

With --out the laid-out diagram is also written as a schema envelope.`,
		Example: `  # Show the tiers
  erd layout schema.erd

  # Output as JSON
  erd layout schema.erd --output json

  # Re-layout a stored diagram and save it
  erd layout schema.json --out schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, args[0], outPath, format)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Also write the laid-out diagram to this file")
	cmd.Flags().StringVar(&format, "format", "json", "Envelope format for --out (json|yaml)")

	return cmd
}

func runLayout(cmd *cobra.Command, arg, outPath, format string) error {
	cctx := NewCommandContext(cmd)
	r := cctx.Renderer

	d, _, err := loadDiagram(cmd, cctx, arg)
	if err != nil {
		return err
	}

	lo := cctx.Cfg.Layout.Options()
	lo.Logger = cctx.Logger
	laid := layout.PlaceMemos(layout.Hierarchical(*d, lo))
	view := newLayoutView(laid)

	if outPath != "" {
		data, err := marshalEnvelope(schema.Encode(laid, schema.WithLogger(cctx.Logger)), format)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, outPath, data); err != nil {
			return err
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return layoutJSON(r, view)
	case output.ModeMarkdown:
		return layoutMarkdown(r, view)
	default:
		return layoutText(r, view)
	}
}

func newLayoutView(d diagram.ERDiagram) layoutView {
	v := layoutView{
		diagram: d,
		graph:   layout.Graph(d),
		tiers:   layout.Levels(d),
		names:   make(map[string]string, len(d.Tables)),
		tables:  make(map[string]diagram.Table, len(d.Tables)),
	}
	for _, t := range d.Tables {
		v.names[t.ID] = t.Name
		v.tables[t.ID] = t
	}
	return v
}

// forcedOutsideCycle lists forced tables that are not on the reported cycle,
// such as tables downstream of it.
func (v layoutView) forcedOutsideCycle() []string {
	var out []string
	for _, id := range v.tiers.Forced {
		if !slices.Contains(v.tiers.Cycle, id) {
			out = append(out, id)
		}
	}
	return out
}

func (v layoutView) namesOf(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = v.names[id]
	}
	return out
}

// layoutText outputs the tiers in styled text format.
func layoutText(r *output.Renderer, v layoutView) error {
	styles := r.Styles()

	r.Header(1, "Diagram Layout")

	for i, ids := range v.tiers.Groups {
		r.Println(styles.Header2.Render(fmt.Sprintf("Tier %d:", i)))
		for _, id := range ids {
			t := v.tables[id]
			deps := v.namesOf(v.graph.GetParents(id))
			children := v.namesOf(v.graph.GetChildren(id))

			r.Printf("  %s %s\n", styles.ModelPath.Render(t.Name),
				styles.Muted.Render(fmt.Sprintf("(%g, %g)", t.Position.X, t.Position.Y)))
			if len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("references:"), strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("referenced by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	if len(v.tiers.Cycle) > 0 {
		r.Warning(fmt.Sprintf("Reference cycle: %s", strings.Join(v.namesOf(v.tiers.Cycle), " -> ")))
		if others := v.forcedOutsideCycle(); len(others) > 0 {
			r.Warning(fmt.Sprintf("Also forced into tier 0: %s", strings.Join(v.namesOf(others), ", ")))
		}
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d tables, %d relations, %d memos",
		len(v.diagram.Tables), len(v.diagram.Relations), len(v.diagram.Memos))))

	return nil
}

// layoutMarkdown outputs the tiers in markdown format.
func layoutMarkdown(r *output.Renderer, v layoutView) error {
	r.Println(output.FormatHeader(1, "Diagram Layout"))
	r.Println("")

	for i, ids := range v.tiers.Groups {
		tierName := fmt.Sprintf("Tier %d", i)
		if i == 0 {
			tierName = "Tier 0 (Roots)"
		}
		r.Println(output.FormatHeader(2, tierName))

		for _, id := range ids {
			t := v.tables[id]
			deps := v.namesOf(v.graph.GetParents(id))
			children := v.namesOf(v.graph.GetChildren(id))

			r.Printf("- %s at (%g, %g)\n", t.Name, t.Position.X, t.Position.Y)
			if len(deps) > 0 {
				r.Printf("  - references: %s\n", strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("  - referenced by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Tables", fmt.Sprintf("%d", len(v.diagram.Tables))))
	r.Println(output.FormatKeyValue("Total Relations", fmt.Sprintf("%d", len(v.diagram.Relations))))
	r.Println(output.FormatKeyValue("Total Memos", fmt.Sprintf("%d", len(v.diagram.Memos))))
	if len(v.tiers.Cycle) > 0 {
		r.Println(output.FormatKeyValue("Reference Cycle", strings.Join(v.namesOf(v.tiers.Cycle), " -> ")))
	}
	if len(v.tiers.Forced) > 0 {
		r.Println(output.FormatKeyValue("Forced Into Tier 0", strings.Join(v.namesOf(v.tiers.Forced), ", ")))
	}

	return nil
}

// layoutJSON outputs the tiers in JSON format.
func layoutJSON(r *output.Renderer, v layoutView) error {
	out := output.LayoutOutput{
		Tiers:          make([]output.LayoutTier, 0, len(v.tiers.Groups)),
		Forced:         v.namesOf(v.tiers.Forced),
		Cycle:          v.namesOf(v.tiers.Cycle),
		TotalTables:    len(v.diagram.Tables),
		TotalRelations: len(v.diagram.Relations),
	}

	for i, ids := range v.tiers.Groups {
		tier := output.LayoutTier{
			Level:  i,
			Tables: make([]output.LayoutTable, 0, len(ids)),
		}
		for _, id := range ids {
			t := v.tables[id]
			tier.Tables = append(tier.Tables, output.LayoutTable{
				ID:        t.ID,
				Name:      t.Name,
				X:         t.Position.X,
				Y:         t.Position.Y,
				DependsOn: v.namesOf(v.graph.GetParents(id)),
				UsedBy:    v.namesOf(v.graph.GetChildren(id)),
			})
		}
		out.Tiers = append(out.Tiers, tier)
	}

	return r.JSON(out)
}
