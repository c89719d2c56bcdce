package dsl

import (
	"slices"
	"strings"
	"time"

	"github.com/leapstack-labs/erd/pkg/diagram"
)

// HeaderTitle is the first line of the optional header comment.
const HeaderTitle = "# ER diagram DSL"

// FormatOptions controls Format.
type FormatOptions struct {
	// IncludeHeader prepends a comment with the generation time.
	IncludeHeader bool
	// Now is the time written in the header. Zero means time.Now().
	Now time.Time
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// Format renders d as DSL text. Positions, ids and timestamps are not part
// of the notation and are dropped.
//
// A Ref column is written as a REF line only when a relation targets it and
// the relation's source table and column exist; otherwise it is written as a
// plain COL line, so a reference is never emitted twice or invented.
func Format(d diagram.ERDiagram, opts FormatOptions) string {
	var sb strings.Builder

	if opts.IncludeHeader {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		sb.WriteString(HeaderTitle + "\n")
		sb.WriteString("# Generated at: " + diagram.Timestamp(now) + "\n\n")
	}

	for _, t := range d.Tables {
		sb.WriteString(tableLine(t))
		sb.WriteByte('\n')

		columns := slices.Clone(t.Columns)
		slices.SortStableFunc(columns, func(a, b diagram.Column) int { return a.Order - b.Order })
		for _, c := range columns {
			if line, ok := refLine(d, t, c); ok {
				sb.WriteString(line)
			} else {
				sb.WriteString(columnLine(t, c))
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	for _, m := range d.Memos {
		sb.WriteString("MEMO " + quote(m.Text) + "\n")
	}
	return sb.String()
}

func tableLine(t diagram.Table) string {
	parts := []string{"TABLE", t.Name}
	if t.Description != "" {
		parts = append(parts, quote(t.Description))
	}
	if pk, ok := t.KeyColumn(); ok {
		parts = append(parts, "PK="+pk.Name)
	}
	if label, ok := t.LabelColumn(); ok {
		parts = append(parts, "LABEL="+label.Name)
	}
	if t.Color != "" {
		parts = append(parts, "COLOR="+t.Color)
	}
	return strings.Join(parts, " ")
}

func columnLine(t diagram.Table, c diagram.Column) string {
	parts := []string{"COL", t.Name + "." + c.Name, string(c.Type)}
	if c.Constraints.Required {
		parts = append(parts, "req")
	}
	if c.Constraints.Unique {
		parts = append(parts, "uniq")
	}
	if c.IsVirtual {
		parts = append(parts, "virtual")
	}
	if c.Description != "" {
		parts = append(parts, quote(c.Description))
	}
	return strings.Join(parts, " ")
}

func refLine(d diagram.ERDiagram, t diagram.Table, c diagram.Column) (string, bool) {
	if c.Type != diagram.TypeRef {
		return "", false
	}
	for _, r := range d.Relations {
		if r.TargetTableID != t.ID || r.TargetColumnID != c.ID {
			continue
		}
		parent, ok := d.TableByID(r.SourceTableID)
		if !ok {
			continue
		}
		parentCol, ok := parent.ColumnByID(r.SourceColumnID)
		if !ok {
			continue
		}
		parts := []string{"REF", t.Name + "." + c.Name, "->", parent.Name + "." + parentCol.Name}
		if c.Constraints.Required {
			parts = append(parts, "req")
		}
		if c.Description != "" {
			parts = append(parts, quote(c.Description))
		}
		return strings.Join(parts, " "), true
	}
	return "", false
}
