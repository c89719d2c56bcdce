// Package dsl converts between ER diagrams and a line-oriented text notation
// that people (and language models) can write by hand:
//
//	TABLE <name> ["<description>"] [PK=<col>] [LABEL=<col>] [COLOR=<color>]
//	COL <table>.<name> <Type> [req] [uniq] [virtual] ["<description>"]
//	REF <table>.<name> -> <refTable>.<refCol> [req] ["<description>"]
//	MEMO "<text>"
//
// Lines starting with # or // are comments. COL and REF lines belong to the
// most recent TABLE. REF targets are resolved after the whole input is read,
// so a table may reference one declared further down.
package dsl

import (
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/erd/pkg/diagram"
	"github.com/leapstack-labs/erd/pkg/layout"
)

// Option configures Parse.
type Option func(*parseConfig)

type parseConfig struct {
	gen    diagram.Generator
	layout layout.Options
	logger *slog.Logger
}

// WithGenerator sets the id and clock source.
func WithGenerator(g diagram.Generator) Option {
	return func(c *parseConfig) { c.gen = g }
}

// WithLayout sets the spacing used to position tables.
func WithLayout(opts layout.Options) Option {
	return func(c *parseConfig) { c.layout = opts }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *parseConfig) { c.logger = l }
}

type columnDecl struct {
	directive
	name        string
	typ         diagram.ColumnType
	required    bool
	unique      bool
	virtual     bool
	description string
}

type tableDecl struct {
	directive
	name        string
	description string
	pk          string
	label       string
	color       string
	columns     []columnDecl
}

type refDecl struct {
	directive
	table       int
	column      int
	parentTable string
	parentCol   string
}

// builder accumulates directives in one forward pass.
type builder struct {
	tables  []tableDecl
	byName  map[string]int
	refs    []refDecl
	memos   []string
	current int
}

// Parse reads DSL text into a laid-out diagram. Tables keep declaration
// order, columns are ordered by declaration, and memos are stacked above the
// table grid. Any malformed or unresolvable line fails the whole parse with a
// *SyntaxError.
func Parse(text string, opts ...Option) (diagram.ERDiagram, error) {
	cfg := parseConfig{
		gen:    diagram.DefaultGenerator{},
		layout: layout.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b := &builder{byName: make(map[string]int), current: -1}
	for i, raw := range strings.Split(text, "\n") {
		d, ok, err := classify(i+1, raw)
		if err != nil {
			return diagram.ERDiagram{}, err
		}
		if !ok {
			continue
		}
		if err := b.add(d); err != nil {
			return diagram.ERDiagram{}, err
		}
	}
	if err := b.resolveKeys(); err != nil {
		return diagram.ERDiagram{}, err
	}

	d, err := b.build(cfg.gen)
	if err != nil {
		return diagram.ERDiagram{}, err
	}

	cfg.logger.Debug("parsed DSL",
		slog.Int("tables", len(d.Tables)),
		slog.Int("relations", len(d.Relations)),
		slog.Int("memos", len(d.Memos)))

	lo := cfg.layout
	if lo.Logger == nil {
		lo.Logger = cfg.logger
	}
	return layout.PlaceMemos(layout.Hierarchical(d, lo)), nil
}

func (b *builder) add(d directive) error {
	switch d.kind {
	case kindTable:
		return b.addTable(d)
	case kindColumn:
		return b.addColumn(d)
	case kindRef:
		return b.addRef(d)
	case kindMemo:
		return b.addMemo(d)
	}
	return syntaxErrorf(d, "unknown directive")
}

func (b *builder) addTable(d directive) error {
	if len(d.tokens) == 0 || d.tokens[0].quoted {
		return syntaxErrorf(d, "TABLE requires a name")
	}
	name := d.tokens[0].text
	if strings.Contains(name, ".") {
		return syntaxErrorf(d, "table name %q must not contain '.'", name)
	}
	if _, exists := b.byName[name]; exists {
		return syntaxErrorf(d, "duplicate table %q", name)
	}

	t := tableDecl{directive: d, name: name}
	seen := make(map[string]bool)
	haveDescription := false
	for _, tok := range d.tokens[1:] {
		if tok.quoted {
			if haveDescription {
				return syntaxErrorf(d, "more than one description")
			}
			t.description = tok.text
			haveDescription = true
			continue
		}
		key, value, ok := strings.Cut(tok.text, "=")
		key = strings.ToUpper(key)
		if !ok || value == "" {
			return syntaxErrorf(d, "unexpected token %q", tok.text)
		}
		if seen[key] {
			return syntaxErrorf(d, "duplicate option %s", key)
		}
		seen[key] = true
		switch key {
		case "PK":
			t.pk = value
		case "LABEL":
			t.label = value
		case "COLOR":
			t.color = value
		default:
			return syntaxErrorf(d, "unknown option %s", key)
		}
	}

	b.byName[name] = len(b.tables)
	b.tables = append(b.tables, t)
	b.current = len(b.tables) - 1
	return nil
}

// currentTable checks that a COL/REF line sits inside the table it names.
func (b *builder) currentTable(d directive, qualified token) (*tableDecl, string, error) {
	if b.current < 0 {
		return nil, "", syntaxErrorf(d, "%s outside of a TABLE block", d.kind)
	}
	tableName, colName, ok := splitQualified(qualified.text)
	if qualified.quoted || !ok {
		return nil, "", syntaxErrorf(d, "expected <table>.<column>, got %q", qualified.text)
	}
	t := &b.tables[b.current]
	if tableName != t.name {
		return nil, "", syntaxErrorf(d, "column belongs to %q but the current table is %q", tableName, t.name)
	}
	for _, c := range t.columns {
		if c.name == colName {
			return nil, "", syntaxErrorf(d, "duplicate column %q in table %q", colName, t.name)
		}
	}
	return t, colName, nil
}

// applyTrailing consumes flags and at most one quoted description.
func applyTrailing(d directive, tokens []token, c *columnDecl, allowed map[string]bool) error {
	haveDescription := false
	for _, tok := range tokens {
		if tok.quoted {
			if haveDescription {
				return syntaxErrorf(d, "more than one description")
			}
			c.description = tok.text
			haveDescription = true
			continue
		}
		flag := strings.ToLower(tok.text)
		if !allowed[flag] {
			return syntaxErrorf(d, "unknown flag %q", tok.text)
		}
		switch flag {
		case "req":
			c.required = true
		case "uniq":
			c.unique = true
		case "virtual":
			c.virtual = true
		}
	}
	return nil
}

var (
	columnFlags = map[string]bool{"req": true, "uniq": true, "virtual": true}
	refFlags    = map[string]bool{"req": true}
)

func (b *builder) addColumn(d directive) error {
	if len(d.tokens) < 2 {
		return syntaxErrorf(d, "COL requires <table>.<column> and a type")
	}
	t, colName, err := b.currentTable(d, d.tokens[0])
	if err != nil {
		return err
	}
	typeTok := d.tokens[1]
	typ, ok := diagram.ParseColumnType(typeTok.text)
	if typeTok.quoted || !ok {
		return syntaxErrorf(d, "unknown column type %q", typeTok.text)
	}

	c := columnDecl{directive: d, name: colName, typ: typ}
	if err := applyTrailing(d, d.tokens[2:], &c, columnFlags); err != nil {
		return err
	}
	t.columns = append(t.columns, c)
	return nil
}

func (b *builder) addRef(d directive) error {
	if len(d.tokens) < 3 || d.tokens[1].quoted || d.tokens[1].text != "->" {
		return syntaxErrorf(d, "REF requires <table>.<column> -> <refTable>.<refColumn>")
	}
	t, colName, err := b.currentTable(d, d.tokens[0])
	if err != nil {
		return err
	}
	parentTable, parentCol, ok := splitQualified(d.tokens[2].text)
	if d.tokens[2].quoted || !ok {
		return syntaxErrorf(d, "expected <refTable>.<refColumn>, got %q", d.tokens[2].text)
	}

	c := columnDecl{directive: d, name: colName, typ: diagram.TypeRef}
	if err := applyTrailing(d, d.tokens[3:], &c, refFlags); err != nil {
		return err
	}
	t.columns = append(t.columns, c)
	b.refs = append(b.refs, refDecl{
		directive:   d,
		table:       b.current,
		column:      len(t.columns) - 1,
		parentTable: parentTable,
		parentCol:   parentCol,
	})
	return nil
}

func (b *builder) addMemo(d directive) error {
	if len(d.tokens) != 1 || !d.tokens[0].quoted {
		return syntaxErrorf(d, `MEMO requires exactly one "quoted" text`)
	}
	b.memos = append(b.memos, d.tokens[0].text)
	return nil
}

// resolveKeys checks PK= and LABEL= against each table's declared columns.
func (b *builder) resolveKeys() error {
	for _, t := range b.tables {
		for _, ref := range []struct{ option, column string }{{"PK", t.pk}, {"LABEL", t.label}} {
			if ref.column == "" {
				continue
			}
			if !t.hasColumn(ref.column) {
				return syntaxErrorf(t.directive, "%s=%s names no column of table %q", ref.option, ref.column, t.name)
			}
		}
	}
	return nil
}

func (t tableDecl) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c.name == name {
			return true
		}
	}
	return false
}

// build assigns ids and resolves references into relations.
func (b *builder) build(gen diagram.Generator) (diagram.ERDiagram, error) {
	now := diagram.Timestamp(gen.Now())
	out := diagram.ERDiagram{
		Tables:    make([]diagram.Table, 0, len(b.tables)),
		Relations: make([]diagram.Relation, 0, len(b.refs)),
		Memos:     make([]diagram.Memo, 0, len(b.memos)),
	}

	for _, td := range b.tables {
		t := diagram.Table{
			ID:            gen.NewID(),
			Name:          td.name,
			Description:   td.description,
			Color:         td.color,
			Columns:       make([]diagram.Column, 0, len(td.columns)),
			ExportTargets: diagram.AllExportTargets(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for i, cd := range td.columns {
			t.Columns = append(t.Columns, diagram.Column{
				ID:          gen.NewID(),
				Name:        cd.name,
				Type:        cd.typ,
				IsKey:       td.pk != "" && td.pk == cd.name,
				IsLabel:     td.label != "" && td.label == cd.name,
				IsVirtual:   cd.virtual,
				Description: cd.description,
				Constraints: diagram.Constraints{Required: cd.required, Unique: cd.unique},
				Order:       i,
			})
		}
		out.Tables = append(out.Tables, t)
	}

	for _, ref := range b.refs {
		parentIdx, ok := b.byName[ref.parentTable]
		if !ok {
			return diagram.ERDiagram{}, syntaxErrorf(ref.directive, "unknown table %q", ref.parentTable)
		}
		parent := out.Tables[parentIdx]
		parentCol, ok := parent.ColumnByName(ref.parentCol)
		if !ok {
			return diagram.ERDiagram{}, syntaxErrorf(ref.directive, "unknown column %q in table %q", ref.parentCol, ref.parentTable)
		}

		child := &out.Tables[ref.table]
		col := &child.Columns[ref.column]
		col.Constraints.RefTableID = parent.ID
		col.Constraints.RefColumnID = parentCol.ID

		out.Relations = append(out.Relations, diagram.Relation{
			ID:             gen.NewID(),
			SourceTableID:  parent.ID,
			SourceColumnID: parentCol.ID,
			TargetTableID:  child.ID,
			TargetColumnID: col.ID,
			Type:           diagram.OneToMany,
		})
	}

	for _, text := range b.memos {
		out.Memos = append(out.Memos, diagram.Memo{
			ID:        gen.NewID(),
			Text:      text,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out, nil
}
