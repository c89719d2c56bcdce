package diagram

// Clone returns a deep copy of d. Slices in the copy are never nil.
func (d ERDiagram) Clone() ERDiagram {
	out := ERDiagram{
		Tables:    make([]Table, len(d.Tables)),
		Relations: make([]Relation, len(d.Relations)),
		Memos:     make([]Memo, len(d.Memos)),
	}
	for i, t := range d.Tables {
		out.Tables[i] = t.Clone()
	}
	for i, r := range d.Relations {
		out.Relations[i] = r.Clone()
	}
	for i, m := range d.Memos {
		out.Memos[i] = m.Clone()
	}
	return out
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := t
	out.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	if t.ExportTargets != nil {
		out.ExportTargets = append([]string{}, t.ExportTargets...)
	}
	return out
}

// Clone returns a deep copy of c.
func (c Column) Clone() Column {
	out := c
	out.Constraints = c.Constraints.Clone()
	if c.DummyValues != nil {
		out.DummyValues = append([]string{}, c.DummyValues...)
	}
	if c.AppSheet != nil {
		out.AppSheet = make(map[string]any, len(c.AppSheet))
		for k, v := range c.AppSheet {
			out.AppSheet[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of c.
func (c Constraints) Clone() Constraints {
	out := c
	out.MinValue = clonePtr(c.MinValue)
	out.MaxValue = clonePtr(c.MaxValue)
	out.MinLength = clonePtr(c.MinLength)
	out.MaxLength = clonePtr(c.MaxLength)
	if c.EnumValues != nil {
		out.EnumValues = append([]string{}, c.EnumValues...)
	}
	return out
}

// Clone returns a deep copy of r.
func (r Relation) Clone() Relation {
	out := r
	out.EdgeAnimationEnabled = clonePtr(r.EdgeAnimationEnabled)
	out.EdgeFollowerIconEnabled = clonePtr(r.EdgeFollowerIconEnabled)
	out.EdgeFollowerIconSize = clonePtr(r.EdgeFollowerIconSize)
	out.EdgeFollowerIconSpeed = clonePtr(r.EdgeFollowerIconSpeed)
	return out
}

// Clone returns a deep copy of m.
func (m Memo) Clone() Memo {
	out := m
	out.Width = clonePtr(m.Width)
	out.Height = clonePtr(m.Height)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
