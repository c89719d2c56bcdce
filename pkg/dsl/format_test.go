package dsl

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/erd/internal/testutil"
	"github.com/leapstack-labs/erd/pkg/diagram"
)

// shape summarizes a diagram by names so diagrams with different ids can be
// compared.
func shape(d diagram.ERDiagram) []string {
	var out []string
	names := map[string]string{}
	for _, t := range d.Tables {
		out = append(out, fmt.Sprintf("T %s %q %s", t.Name, t.Description, t.Color))
		cols := slices.Clone(t.Columns)
		slices.SortStableFunc(cols, func(a, b diagram.Column) int { return a.Order - b.Order })
		for _, c := range cols {
			names[c.ID] = t.Name + "." + c.Name
			out = append(out, fmt.Sprintf("C %s.%s %s key=%t label=%t virtual=%t req=%t uniq=%t %q order=%d",
				t.Name, c.Name, c.Type, c.IsKey, c.IsLabel, c.IsVirtual,
				c.Constraints.Required, c.Constraints.Unique, c.Description, c.Order))
		}
	}
	for _, r := range d.Relations {
		out = append(out, fmt.Sprintf("R %s -> %s %s", names[r.TargetColumnID], names[r.SourceColumnID], r.Type))
	}
	for _, m := range d.Memos {
		out = append(out, fmt.Sprintf("M %q", m.Text))
	}
	return out
}

func TestFormat_Canonical(t *testing.T) {
	d := parse(t, testutil.OrgsDSL)

	got := Format(d, FormatOptions{})

	want := strings.TrimPrefix(testutil.OrgsDSL, "# sample workspace\n")
	assert.Equal(t, want, got)
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"orgs":  testutil.OrgsDSL,
		"cycle": testutil.CycleDSL,
		"escapes": `TABLE notes "quote \" and\nbreak" PK=id
COL notes.id Text
COL notes.body LongText "multi\nline"
MEMO "a \"quoted\" memo"
MEMO ""
`,
		"backslashes": `TABLE paths "C:\\dir\\" PK=id
COL paths.id Text "kept \\n literally"
COL paths.raw Text "C:\temp"
MEMO "trailing \\"
`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			first := parse(t, input)
			text := Format(first, FormatOptions{IncludeHeader: true, Now: testutil.FixedTime})
			second := parse(t, text)

			assert.Equal(t, shape(first), shape(second))
			assert.Equal(t, text, Format(second, FormatOptions{IncludeHeader: true, Now: testutil.FixedTime}))
		})
	}
}

func TestFormat_TrailingBackslash(t *testing.T) {
	d := parse(t, "TABLE t PK=id\nCOL t.id Text\nMEMO \"m\"\n")
	d.Tables[0].Description = `C:\dir\`
	d.Tables[0].Columns[0].Description = `line\nnot a break`
	d.Memos[0].Text = "\\"

	text := Format(d, FormatOptions{})
	assert.Contains(t, text, `TABLE t "C:\\dir\\" PK=id`)

	back := parse(t, text)
	assert.Equal(t, `C:\dir\`, back.Tables[0].Description)
	assert.Equal(t, `line\nnot a break`, back.Tables[0].Columns[0].Description)
	assert.Equal(t, `\`, back.Memos[0].Text)
}

func TestFormat_Header(t *testing.T) {
	got := Format(diagram.ERDiagram{}, FormatOptions{
		IncludeHeader: true,
		Now:           time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.UTC),
	})

	assert.Equal(t, HeaderTitle+"\n# Generated at: 2025-03-04T05:06:07.008Z\n\n", got)
	assert.False(t, IsDSL(got))
}

func TestFormat_ColumnOrder(t *testing.T) {
	d := diagram.ERDiagram{Tables: []diagram.Table{{
		ID:   "t1",
		Name: "t",
		Columns: []diagram.Column{
			{ID: "c2", Name: "second", Type: diagram.TypeNumber, Order: 1},
			{ID: "c1", Name: "first", Type: diagram.TypeText, Order: 0, IsKey: true},
		},
	}}}

	got := Format(d, FormatOptions{})

	assert.Equal(t, "TABLE t PK=first\nCOL t.first Text\nCOL t.second Number\n\n", got)
}

func TestFormat_RefColumns(t *testing.T) {
	parent := diagram.Table{
		ID:      "p",
		Name:    "orgs",
		Columns: []diagram.Column{{ID: "p1", Name: "id", Type: diagram.TypeText, IsKey: true}},
	}
	child := diagram.Table{
		ID:   "c",
		Name: "users",
		Columns: []diagram.Column{
			{ID: "c1", Name: "org_id", Type: diagram.TypeRef, Order: 0,
				Constraints: diagram.Constraints{Required: true, RefTableID: "p", RefColumnID: "p1"}},
			{ID: "c2", Name: "team_id", Type: diagram.TypeRef, Order: 1,
				Constraints: diagram.Constraints{RefTableID: "gone", RefColumnID: "gone1"}},
			{ID: "c3", Name: "ghost_id", Type: diagram.TypeRef, Order: 2},
			{ID: "c4", Name: "text_id", Type: diagram.TypeText, Order: 3},
		},
	}
	d := diagram.ERDiagram{
		Tables: []diagram.Table{parent, child},
		Relations: []diagram.Relation{
			{ID: "r1", SourceTableID: "p", SourceColumnID: "p1", TargetTableID: "c", TargetColumnID: "c1", Type: diagram.OneToMany},
			// duplicate relation for the same column: only the first is emitted
			{ID: "r2", SourceTableID: "p", SourceColumnID: "p1", TargetTableID: "c", TargetColumnID: "c1", Type: diagram.OneToMany},
			// dangling source
			{ID: "r3", SourceTableID: "missing", SourceColumnID: "x", TargetTableID: "c", TargetColumnID: "c3", Type: diagram.OneToMany},
			// non-Ref target column
			{ID: "r4", SourceTableID: "p", SourceColumnID: "p1", TargetTableID: "c", TargetColumnID: "c4", Type: diagram.OneToMany},
		},
	}

	got := Format(d, FormatOptions{})

	want := `TABLE orgs PK=id
COL orgs.id Text

TABLE users
REF users.org_id -> orgs.id req
COL users.team_id Ref
COL users.ghost_id Ref
COL users.text_id Text

`
	assert.Equal(t, want, got)
}

func TestFormat_DoesNotMutateInput(t *testing.T) {
	d := diagram.ERDiagram{Tables: []diagram.Table{{
		ID:   "t1",
		Name: "t",
		Columns: []diagram.Column{
			{ID: "c2", Name: "b", Type: diagram.TypeText, Order: 1},
			{ID: "c1", Name: "a", Type: diagram.TypeText, Order: 0},
		},
	}}}

	_ = Format(d, FormatOptions{})

	assert.Equal(t, "c2", d.Tables[0].Columns[0].ID)
}

func TestFormat_ParsesBackAsDSL(t *testing.T) {
	d := parse(t, testutil.OrgsDSL)
	text := Format(d, FormatOptions{IncludeHeader: true})

	require.True(t, IsDSL(text))
	_, err := Parse(text)
	require.NoError(t, err)
}

func TestIsDSL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"TABLE users PK=id", true},
		{"# header\n// note\n\n  col users.id Text", true},
		{"REF\tusers.org_id -> orgs.id", true},
		{"MEMO \"x\"", true},
		{"TABLE", false},
		{"TABLES users", false},
		{`{"tables": []}`, false},
		{"# only comments", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDSL(tt.input), "IsDSL(%q)", tt.input)
	}
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON(`  {"schemaVersion": 4}`))
	assert.True(t, IsJSON("\n[1, 2]"))
	assert.False(t, IsJSON("TABLE users"))
	assert.False(t, IsJSON(""))
}
