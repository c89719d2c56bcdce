// Package layout assigns canvas positions to the tables and memos of a
// diagram.
//
// Tables are placed in tiers: a table's tier is the length of the longest
// chain of parent references above it, and tables sharing a tier are stacked
// vertically in declaration order. Reference cycles never block placement;
// tables caught in or below a cycle land in tier 0.
package layout

import (
	"log/slog"

	"github.com/leapstack-labs/erd/internal/dag"
	"github.com/leapstack-labs/erd/pkg/diagram"
)

// Default spacing between tiers and between slots within a tier.
const (
	DefaultHorizontalSpacing = 400
	DefaultVerticalSpacing   = 500
)

// Memo placement used when memos are imported without positions.
const (
	MemoWidth    = 300
	MemoHeight   = 150
	memoBaseY    = -200
	memoSpacingY = 250
)

// Options controls table spacing.
type Options struct {
	HorizontalSpacing float64
	VerticalSpacing   float64
	Logger            *slog.Logger
}

// DefaultOptions returns the standard 400x500 grid.
func DefaultOptions() Options {
	return Options{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
	}
}

func (o Options) withDefaults() Options {
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = DefaultVerticalSpacing
	}
	return o
}

// Tiers is the result of level assignment.
type Tiers struct {
	// Levels maps table id to tier.
	Levels map[string]int
	// Groups lists table ids per tier, each in declaration order.
	Groups [][]string
	// Forced lists tables that could not be resolved because of a cycle and
	// were placed in tier 0.
	Forced []string
	// Cycle is one reference cycle among the forced tables as a closed path
	// (first id repeated at the end). Empty when nothing was forced.
	Cycle []string
}

// Graph builds the parent/child graph of d. Relations whose endpoints are not
// tables of d, and self-references, contribute no edge.
func Graph(d diagram.ERDiagram) *dag.Graph {
	g := dag.NewGraph()
	for _, t := range d.Tables {
		g.AddNode(t.ID)
	}
	for _, r := range d.Relations {
		if r.SourceTableID == r.TargetTableID {
			continue
		}
		// Errors only report unknown endpoints, which are skipped.
		_ = g.AddEdge(r.SourceTableID, r.TargetTableID)
	}
	return g
}

// Levels computes the tier of every table in d.
func Levels(d diagram.ERDiagram) Tiers {
	g := Graph(d)
	levels, forced := g.Levels()
	tiers := Tiers{
		Levels: levels,
		Groups: g.GroupByLevel(levels),
		Forced: forced,
	}
	if len(forced) > 0 {
		_, tiers.Cycle = g.HasCycle()
	}
	return tiers
}

// Hierarchical returns a copy of d with every table positioned on the tier
// grid. Memos and relations are copied unchanged.
func Hierarchical(d diagram.ERDiagram, opts Options) diagram.ERDiagram {
	opts = opts.withDefaults()
	tiers := Levels(d)
	if len(tiers.Forced) > 0 && opts.Logger != nil {
		opts.Logger.Debug("cycle detected, tables forced to tier 0",
			slog.Any("cycle", tiers.Cycle), slog.Any("tables", tiers.Forced))
	}

	positions := make(map[string]diagram.Position, len(d.Tables))
	for level, ids := range tiers.Groups {
		for slot, id := range ids {
			positions[id] = diagram.Position{
				X: float64(level) * opts.HorizontalSpacing,
				Y: float64(slot) * opts.VerticalSpacing,
			}
		}
	}

	out := d.Clone()
	for i := range out.Tables {
		out.Tables[i].Position = positions[out.Tables[i].ID]
	}
	return out
}

// PlaceMemos returns a copy of d with memos stacked above the table grid at
// a fixed size.
func PlaceMemos(d diagram.ERDiagram) diagram.ERDiagram {
	out := d.Clone()
	for i := range out.Memos {
		out.Memos[i].Position = diagram.Position{
			X: 0,
			Y: float64(memoBaseY - i*memoSpacingY),
		}
		out.Memos[i].Width = diagram.Ptr(float64(MemoWidth))
		out.Memos[i].Height = diagram.Ptr(float64(MemoHeight))
	}
	return out
}
