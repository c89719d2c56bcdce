package schema

import (
	"encoding/json"
	"math"

	"github.com/leapstack-labs/erd/pkg/diagram"
)

// typedTree converts typed diagram values into generic JSON values. NaN and
// infinite floats cannot be marshalled, so they are removed first: optional
// numbers become absent and a bad coordinate is dropped from its position,
// which lets the normalizer apply the usual fallback.
func typedTree(value any) (tree any, handled bool, ok bool) {
	switch v := value.(type) {
	case diagram.ERDiagram:
		t, ok := diagramTree(v)
		return t, true, ok
	case *diagram.ERDiagram:
		if v == nil {
			return nil, true, true
		}
		t, ok := diagramTree(*v)
		return t, true, ok
	case Envelope:
		return envelopeTree(v)
	case *Envelope:
		if v == nil {
			return nil, true, true
		}
		return envelopeTree(*v)
	}
	return nil, false, false
}

func envelopeTree(env Envelope) (any, bool, bool) {
	d, ok := diagramTree(env.Diagram)
	if !ok {
		return nil, true, false
	}
	return object{"schemaVersion": float64(env.SchemaVersion), "diagram": d}, true, true
}

// badCoords records which coordinates of an entity were not finite.
type badCoords struct{ x, y bool }

func (b badCoords) set() bool { return b.x || b.y }

func diagramTree(d diagram.ERDiagram) (any, bool) {
	c := d.Clone()
	// Keep absent collections absent so classification matches the marshal.
	if d.Tables == nil {
		c.Tables = nil
	}
	if d.Relations == nil {
		c.Relations = nil
	}
	if d.Memos == nil {
		c.Memos = nil
	}

	tableCoords := make(map[int]badCoords)
	for i := range c.Tables {
		t := &c.Tables[i]
		if b := finitePosition(&t.Position); b.set() {
			tableCoords[i] = b
		}
		for j := range t.Columns {
			col := &t.Columns[j]
			col.Constraints.MinValue = finitePtr(col.Constraints.MinValue)
			col.Constraints.MaxValue = finitePtr(col.Constraints.MaxValue)
			if col.AppSheet != nil {
				col.AppSheet, _ = finiteValue(col.AppSheet).(map[string]any)
			}
		}
	}
	for i := range c.Relations {
		c.Relations[i].EdgeFollowerIconSpeed = finitePtr(c.Relations[i].EdgeFollowerIconSpeed)
	}
	memoCoords := make(map[int]badCoords)
	for i := range c.Memos {
		m := &c.Memos[i]
		if b := finitePosition(&m.Position); b.set() {
			memoCoords[i] = b
		}
		m.Width = finitePtr(m.Width)
		m.Height = finitePtr(m.Height)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return nil, false
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, false
	}

	o := asObject(tree)
	dropCoords(asArray(o["tables"]), tableCoords)
	dropCoords(asArray(o["memos"]), memoCoords)
	return tree, true
}

// finitePosition zeroes non-finite coordinates and reports which they were.
func finitePosition(p *diagram.Position) badCoords {
	var b badCoords
	if !isFinite(p.X) {
		p.X, b.x = 0, true
	}
	if !isFinite(p.Y) {
		p.Y, b.y = 0, true
	}
	return b
}

func dropCoords(items []any, bad map[int]badCoords) {
	for i, b := range bad {
		if i >= len(items) {
			continue
		}
		pos := asObject(asObject(items[i])["position"])
		if b.x {
			delete(pos, "x")
		}
		if b.y {
			delete(pos, "y")
		}
	}
}

func finitePtr(p *float64) *float64 {
	if p == nil || isFinite(*p) {
		return p
	}
	return nil
}

// finiteValue removes non-finite floats from free-form values.
func finiteValue(v any) any {
	switch x := v.(type) {
	case float64:
		if !isFinite(x) {
			return nil
		}
	case float32:
		if !isFinite(float64(x)) {
			return nil
		}
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			if cleaned := finiteValue(item); cleaned != nil || item == nil {
				out[k] = cleaned
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			if cleaned := finiteValue(item); cleaned != nil || item == nil {
				out = append(out, cleaned)
			}
		}
		return out
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
