package schema

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/erd/pkg/diagram"
)

// Relation rendering defaults and bounds.
const (
	DefaultFollowerIconName  = "arrow-right"
	DefaultFollowerIconSize  = 14
	MinFollowerIconSize      = 8
	MaxFollowerIconSize      = 48
	DefaultFollowerIconSpeed = 90
	MinFollowerIconSpeed     = 10
	MaxFollowerIconSpeed     = 1000
)

// Fallback positions for entities stored without one.
const (
	tableBase = 100
	tableStep = 30
	memoBase  = 200
	memoStep  = 20
)

// object is a decoded JSON object.
type object = map[string]any

// toTree converts any input into generic JSON values. Strings and byte
// slices are parsed as JSON text, and text that holds a JSON string is parsed
// once more. Typed diagrams and envelopes are cleaned of non-finite numbers;
// everything else goes through a JSON marshal. ok is false when the input
// cannot be represented.
func toTree(value any) (tree any, ok bool) {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		if t, handled, ok := typedTree(value); handled {
			return t, ok
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		if err := json.Unmarshal(b, &tree); err != nil {
			return nil, false
		}
		return tree, true
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, false
	}
	if inner, isString := tree.(string); isString {
		if err := json.Unmarshal([]byte(inner), &tree); err != nil {
			return nil, false
		}
	}
	return tree, true
}

func asObject(v any) object {
	if o, ok := v.(object); ok {
		return o
	}
	return object{}
}

func asArray(v any) []any {
	a, _ := v.([]any)
	return a
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringField(v any) string {
	s, _ := asString(v)
	return s
}

// looksLikeDiagram reports whether v is an object with at least one of
// tables, relations and memos, and every one present is an array. Null
// counts as absent.
func looksLikeDiagram(v any) bool {
	o, ok := v.(object)
	if !ok {
		return false
	}
	found := false
	for _, key := range []string{"tables", "relations", "memos"} {
		field, present := o[key]
		if !present || field == nil {
			continue
		}
		if _, isArray := field.([]any); !isArray {
			return false
		}
		found = true
	}
	return found
}

// idAllocator hands out ids unique within one namespace.
type idAllocator struct {
	gen  diagram.Generator
	seen map[string]bool
}

func newIDAllocator(gen diagram.Generator) *idAllocator {
	return &idAllocator{gen: gen, seen: make(map[string]bool)}
}

// take keeps a usable candidate id or issues a fresh one.
func (a *idAllocator) take(candidate any) string {
	id, _ := asString(candidate)
	for id == "" || a.seen[id] {
		id = a.gen.NewID()
	}
	a.seen[id] = true
	return id
}

type normalizer struct {
	gen diagram.Generator
	now string
}

// Normalize repairs an arbitrary value into a well-formed diagram. It never
// fails: anything unusable is replaced by a default, and a value that is not
// an object yields an empty diagram. raw may be JSON text, generic JSON
// values, or a typed diagram.
func Normalize(raw any, gen diagram.Generator) diagram.ERDiagram {
	if gen == nil {
		gen = diagram.DefaultGenerator{}
	}
	tree, _ := toTree(raw)
	n := normalizer{gen: gen, now: diagram.Timestamp(gen.Now())}
	return n.diagram(asObject(tree))
}

// NormalizeDiagram applies the same repair rules to a typed diagram.
func NormalizeDiagram(d diagram.ERDiagram, gen diagram.Generator) diagram.ERDiagram {
	return Normalize(d, gen)
}

func (n normalizer) diagram(o object) diagram.ERDiagram {
	tables := asArray(o["tables"])
	relations := asArray(o["relations"])
	memos := asArray(o["memos"])

	out := diagram.ERDiagram{
		Tables:    make([]diagram.Table, 0, len(tables)),
		Relations: make([]diagram.Relation, 0, len(relations)),
		Memos:     make([]diagram.Memo, 0, len(memos)),
	}

	tableIDs := newIDAllocator(n.gen)
	for i, t := range tables {
		out.Tables = append(out.Tables, n.table(asObject(t), i, tableIDs))
	}
	relationIDs := newIDAllocator(n.gen)
	for _, r := range relations {
		out.Relations = append(out.Relations, n.relation(asObject(r), relationIDs))
	}
	memoIDs := newIDAllocator(n.gen)
	for i, m := range memos {
		out.Memos = append(out.Memos, n.memo(asObject(m), i, memoIDs))
	}
	return out
}

func (n normalizer) timestamp(v any) string {
	if s := stringField(v); s != "" {
		return s
	}
	return n.now
}

func position(v any, fallback float64) diagram.Position {
	o := asObject(v)
	p := diagram.Position{X: fallback, Y: fallback}
	if x, ok := asNumber(o["x"]); ok {
		p.X = x
	}
	if y, ok := asNumber(o["y"]); ok {
		p.Y = y
	}
	return p
}

func (n normalizer) table(o object, index int, ids *idAllocator) diagram.Table {
	name := stringField(o["name"])
	if name == "" {
		name = placeholderName("Table", index)
	}

	rawColumns := asArray(o["columns"])
	type ordered struct {
		col   object
		order float64
	}
	cols := make([]ordered, len(rawColumns))
	for i, c := range rawColumns {
		co := asObject(c)
		order, ok := asNumber(co["order"])
		if !ok {
			order = float64(i)
		}
		cols[i] = ordered{col: co, order: order}
	}
	slices.SortStableFunc(cols, func(a, b ordered) int {
		switch {
		case a.order < b.order:
			return -1
		case a.order > b.order:
			return 1
		}
		return 0
	})

	columnIDs := newIDAllocator(n.gen)
	columns := make([]diagram.Column, 0, len(cols))
	for i, c := range cols {
		columns = append(columns, n.column(c.col, i, columnIDs))
	}

	return diagram.Table{
		ID:            ids.take(o["id"]),
		Name:          name,
		Description:   stringField(o["description"]),
		Columns:       columns,
		Position:      position(o["position"], float64(tableBase+index*tableStep)),
		Color:         stringField(o["color"]),
		ExportTargets: exportTargets(o["exportTargets"]),
		SyncGroupID:   stringField(o["syncGroupId"]),
		CreatedAt:     n.timestamp(o["createdAt"]),
		UpdatedAt:     n.timestamp(o["updatedAt"]),
	}
}

func exportTargets(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return diagram.AllExportTargets()
	}
	allowed := diagram.AllExportTargets()
	out := []string{}
	for _, item := range raw {
		s, ok := asString(item)
		if ok && slices.Contains(allowed, s) && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// column normalizes one column; index is its final position.
func (n normalizer) column(o object, index int, ids *idAllocator) diagram.Column {
	name := stringField(o["name"])
	if name == "" {
		name = placeholderName("Column", index)
	}
	typ := diagram.TypeText
	if s, ok := asString(o["type"]); ok {
		if t, known := diagram.ParseColumnType(s); known {
			typ = t
		}
	}

	c := diagram.Column{
		ID:          ids.take(o["id"]),
		Name:        name,
		Type:        typ,
		IsKey:       asBool(o["isKey"]),
		IsLabel:     asBool(o["isLabel"]),
		IsVirtual:   asBool(o["isVirtual"]),
		Description: stringField(o["description"]),
		Constraints: constraints(asObject(o["constraints"]), typ == diagram.TypeRef),
		Order:       index,
	}
	if appSheet, ok := o["appSheet"].(object); ok && len(appSheet) > 0 {
		c.AppSheet = make(map[string]any, len(appSheet))
		for k, v := range appSheet {
			c.AppSheet[k] = v
		}
	}
	if values := stringList(o["dummyValues"]); len(values) > 0 {
		c.DummyValues = values
	}
	return c
}

// stringList keeps the string members of an array.
func stringList(v any) []string {
	var out []string
	for _, item := range asArray(v) {
		if s, ok := asString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func constraints(o object, isRef bool) diagram.Constraints {
	c := diagram.Constraints{
		Required:     asBool(o["required"]),
		Unique:       asBool(o["unique"]),
		DefaultValue: stringField(o["defaultValue"]),
		Pattern:      stringField(o["pattern"]),
		EnumValues:   stringList(o["enumValues"]),
	}
	if v, ok := asNumber(o["minValue"]); ok {
		c.MinValue = &v
	}
	if v, ok := asNumber(o["maxValue"]); ok {
		c.MaxValue = &v
	}
	if v, ok := asNumber(o["minLength"]); ok {
		c.MinLength = diagram.Ptr(truncInt(v))
	}
	if v, ok := asNumber(o["maxLength"]); ok {
		c.MaxLength = diagram.Ptr(truncInt(v))
	}
	if isRef {
		c.RefTableID = stringField(o["refTableId"])
		c.RefColumnID = stringField(o["refColumnId"])
	}
	return c
}

func (n normalizer) relation(o object, ids *idAllocator) diagram.Relation {
	r := diagram.Relation{
		ID:             ids.take(o["id"]),
		SourceTableID:  stringField(o["sourceTableId"]),
		SourceColumnID: stringField(o["sourceColumnId"]),
		TargetTableID:  stringField(o["targetTableId"]),
		TargetColumnID: stringField(o["targetColumnId"]),
		Type:           diagram.OneToMany,
		Label:          stringField(o["label"]),
	}
	if s, ok := asString(o["type"]); ok && diagram.Cardinality(s).Valid() {
		r.Type = diagram.Cardinality(s)
	}
	if b, ok := o["edgeAnimationEnabled"].(bool); ok {
		r.EdgeAnimationEnabled = &b
	}
	if b, ok := o["edgeFollowerIconEnabled"].(bool); ok {
		r.EdgeFollowerIconEnabled = &b
	}

	r.EdgeFollowerIconName = DefaultFollowerIconName
	if s := strings.TrimSpace(stringField(o["edgeFollowerIconName"])); s != "" {
		r.EdgeFollowerIconName = s
	}

	size := DefaultFollowerIconSize
	if v, ok := asNumber(o["edgeFollowerIconSize"]); ok {
		size = int(clamp(math.Trunc(v), MinFollowerIconSize, MaxFollowerIconSize))
	}
	r.EdgeFollowerIconSize = &size

	speed := float64(DefaultFollowerIconSpeed)
	if v, ok := asNumber(o["edgeFollowerIconSpeed"]); ok {
		speed = clamp(v, MinFollowerIconSpeed, MaxFollowerIconSpeed)
	}
	r.EdgeFollowerIconSpeed = &speed

	switch style := diagram.LineStyle(stringField(o["edgeLineStyle"])); style {
	case diagram.LineSolid, diagram.LineDashed, diagram.LineDotted:
		r.EdgeLineStyle = style
	}
	if diagram.EdgeVisibility(stringField(o["edgeVisibility"])) == diagram.VisibilityRootOnly {
		r.EdgeVisibility = diagram.VisibilityRootOnly
	}
	return r
}

func (n normalizer) memo(o object, index int, ids *idAllocator) diagram.Memo {
	m := diagram.Memo{
		ID:        ids.take(o["id"]),
		Text:      stringField(o["text"]),
		Position:  position(o["position"], float64(memoBase+index*memoStep)),
		CreatedAt: n.timestamp(o["createdAt"]),
		UpdatedAt: n.timestamp(o["updatedAt"]),
	}
	if v, ok := asNumber(o["width"]); ok {
		m.Width = &v
	}
	if v, ok := asNumber(o["height"]); ok {
		m.Height = &v
	}
	return m
}

// truncInt truncates v toward zero, saturating at the int range.
func truncInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(math.Trunc(v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func placeholderName(prefix string, index int) string {
	return prefix + strconv.Itoa(index+1)
}
