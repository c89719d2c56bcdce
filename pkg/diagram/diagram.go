// Package diagram defines the ER diagram value shared by the DSL and schema
// pipelines.
//
// Values in this package are plain data. Operations elsewhere in the module
// take a diagram and return a new one; nothing holds a pointer back into a
// caller-owned diagram.
package diagram

// Position is a 2-D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Constraints is the optional validation bag attached to a column.
// RefTableID and RefColumnID are only meaningful for Ref-typed columns.
type Constraints struct {
	Required     bool     `json:"required,omitempty"`
	Unique       bool     `json:"unique,omitempty"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	MinValue     *float64 `json:"minValue,omitempty"`
	MaxValue     *float64 `json:"maxValue,omitempty"`
	MinLength    *int     `json:"minLength,omitempty"`
	MaxLength    *int     `json:"maxLength,omitempty"`
	Pattern      string   `json:"pattern,omitempty"`
	EnumValues   []string `json:"enumValues,omitempty"`
	RefTableID   string   `json:"refTableId,omitempty"`
	RefColumnID  string   `json:"refColumnId,omitempty"`
}

// Column is a single column of a table.
type Column struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ColumnType  `json:"type"`
	IsKey       bool        `json:"isKey"`
	IsLabel     bool        `json:"isLabel"`
	IsVirtual   bool        `json:"isVirtual"`
	Description string      `json:"description,omitempty"`
	Constraints Constraints `json:"constraints"`
	Order       int         `json:"order"`

	// AppSheet holds free-form note parameters keyed by their AppSheet name.
	AppSheet map[string]any `json:"appSheet,omitempty"`
	// DummyValues are preferred sample values, one candidate per entry.
	DummyValues []string `json:"dummyValues,omitempty"`
}

// Export targets a table can be included in.
const (
	ExportExcel   = "excel"
	ExportJSON    = "json"
	ExportPackage = "package"
)

// AllExportTargets lists every export target in canonical order.
func AllExportTargets() []string {
	return []string{ExportExcel, ExportJSON, ExportPackage}
}

// Table is a table node of the diagram.
type Table struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
	Position    Position `json:"position"`
	Color       string   `json:"color,omitempty"`
	// ExportTargets is always emitted: an empty list means "export nowhere",
	// while an absent list means "export everywhere".
	ExportTargets []string `json:"exportTargets"`
	SyncGroupID   string   `json:"syncGroupId,omitempty"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

// KeyColumn returns the first column flagged as key.
func (t Table) KeyColumn() (Column, bool) {
	for _, c := range t.Columns {
		if c.IsKey {
			return c, true
		}
	}
	return Column{}, false
}

// LabelColumn returns the first column flagged as label.
func (t Table) LabelColumn() (Column, bool) {
	for _, c := range t.Columns {
		if c.IsLabel {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnByID looks up a column by id.
func (t Table) ColumnByID(id string) (Column, bool) {
	for _, c := range t.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnByName looks up a column by name.
func (t Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Cardinality is the relation cardinality tag.
type Cardinality string

// Relation cardinalities.
const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
)

// Valid reports whether c is one of the known cardinalities.
func (c Cardinality) Valid() bool {
	switch c {
	case OneToOne, OneToMany, ManyToMany:
		return true
	}
	return false
}

// LineStyle is a relation rendering hint.
type LineStyle string

// Line styles.
const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// EdgeVisibility restricts when a relation is drawn.
type EdgeVisibility string

// VisibilityRootOnly draws the relation only when its root table is focused.
const VisibilityRootOnly EdgeVisibility = "rootOnly"

// Relation is an edge from a parent ("1" side, source) to a child ("N" side,
// target). Endpoints are not guaranteed to resolve.
type Relation struct {
	ID             string      `json:"id"`
	SourceTableID  string      `json:"sourceTableId"`
	SourceColumnID string      `json:"sourceColumnId"`
	TargetTableID  string      `json:"targetTableId"`
	TargetColumnID string      `json:"targetColumnId"`
	Type           Cardinality `json:"type"`
	Label          string      `json:"label,omitempty"`

	EdgeAnimationEnabled    *bool          `json:"edgeAnimationEnabled,omitempty"`
	EdgeFollowerIconEnabled *bool          `json:"edgeFollowerIconEnabled,omitempty"`
	EdgeFollowerIconName    string         `json:"edgeFollowerIconName,omitempty"`
	EdgeFollowerIconSize    *int           `json:"edgeFollowerIconSize,omitempty"`
	EdgeFollowerIconSpeed   *float64       `json:"edgeFollowerIconSpeed,omitempty"`
	EdgeLineStyle           LineStyle      `json:"edgeLineStyle,omitempty"`
	EdgeVisibility          EdgeVisibility `json:"edgeVisibility,omitempty"`
}

// Memo is a free-text sticky note on the canvas.
type Memo struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Position  Position `json:"position"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// ERDiagram is the full diagram value.
type ERDiagram struct {
	Tables    []Table    `json:"tables"`
	Relations []Relation `json:"relations"`
	Memos     []Memo     `json:"memos"`
}

// TableByID looks up a table by id.
func (d ERDiagram) TableByID(id string) (Table, bool) {
	for _, t := range d.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}

// TableByName looks up a table by name.
func (d ERDiagram) TableByName(name string) (Table, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
