// Package dag provides the table dependency graph used by the layout engine.
// Edges run from a parent table to the child tables that reference it.
// Unlike a model DAG, cycles are legal input here: level assignment tolerates
// them instead of rejecting the graph.
package dag

import (
	"fmt"
	"slices"
)

// Graph is a directed graph that remembers node insertion order.
type Graph struct {
	nodes   map[string]bool
	order   []string            // insertion order, drives every iteration
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Adding an existing id is a no-op.
func (g *Graph) AddNode(id string) {
	if g.nodes[id] {
		return
	}
	g.nodes[id] = true
	g.order = append(g.order, id)
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge adds a directed edge from parent to child (child references parent).
func (g *Graph) AddEdge(parentID, childID string) error {
	if !g.nodes[parentID] {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if !g.nodes[childID] {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}

	if !slices.Contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !slices.Contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetParents returns the parents of a node.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the children of a node.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// HasCycle reports whether the graph contains a cycle, along with one cycle
// path. It uses an explicit stack so deep chains cannot exhaust the call stack.
func (g *Graph) HasCycle() (bool, []string) {
	const (
		white = iota // unvisited
		grey         // on the current path
		black        // finished
	)
	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string, len(g.nodes))

	type frame struct {
		id   string
		next int
	}

	for _, start := range g.order {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = grey

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.edges[top.id]
			if top.next >= len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++

			switch color[child] {
			case white:
				parent[child] = top.id
				color[child] = grey
				stack = append(stack, frame{id: child})
			case grey:
				path := []string{child}
				for curr := top.id; curr != child; curr = parent[curr] {
					path = append([]string{curr}, path...)
				}
				return true, append([]string{child}, path...)
			}
		}
	}

	return false, nil
}

// Levels assigns every node a level: 0 for nodes without parents, otherwise
// one more than the highest parent level.
//
// Resolution is iterative: each round levels every node whose parents are
// all resolved. Nodes still unresolved when a round makes no progress (cycle
// members and everything downstream of a cycle) are forced to level 0 and
// reported in forced, in insertion order.
func (g *Graph) Levels() (levels map[string]int, forced []string) {
	levels = make(map[string]int, len(g.nodes))
	pending := slices.Clone(g.order)

	for len(pending) > 0 {
		var next []string
		for _, id := range pending {
			level, ok := g.resolvedLevel(id, levels)
			if !ok {
				next = append(next, id)
				continue
			}
			levels[id] = level
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}

	for _, id := range g.order {
		if _, ok := levels[id]; !ok {
			levels[id] = 0
			forced = append(forced, id)
		}
	}
	return levels, forced
}

// resolvedLevel computes the level of id if all its parents are leveled.
// Parents leveled in the same round count as resolved, which only shortens
// the number of rounds; the result is the same.
func (g *Graph) resolvedLevel(id string, levels map[string]int) (int, bool) {
	level := 0
	for _, parentID := range g.parents[id] {
		pl, ok := levels[parentID]
		if !ok {
			return 0, false
		}
		if pl+1 > level {
			level = pl + 1
		}
	}
	return level, true
}

// GroupByLevel returns node ids grouped by level, each group in insertion
// order.
func (g *Graph) GroupByLevel(levels map[string]int) [][]string {
	maxLevel := -1
	for _, l := range levels {
		if l > maxLevel {
			maxLevel = l
		}
	}
	groups := make([][]string, maxLevel+1)
	for i := range groups {
		groups[i] = []string{}
	}
	for _, id := range g.order {
		if l, ok := levels[id]; ok {
			groups[l] = append(groups[l], id)
		}
	}
	return groups
}
