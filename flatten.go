package reportflow

import "image"

// Flatten converts row into export elements placed at offset. Only a
// ColumnBuilder is flattened; any other container yields nil. The result
// is a single ExportContainer holding one element per direct child, each
// moved by offset. Nested containers are not descended into.
func Flatten(row Container, offset image.Point, rule BackColorRule) []ExportElement {
	cb, ok := row.(ColumnBuilder)
	if !ok {
		return nil
	}
	if rule != nil {
		rule.AdjustBackColor(row)
	}

	col := cb.CreateExportColumn()
	col.Location = offset
	children := row.Children()
	col.Items = make([]ExportElement, 0, len(children))
	for _, child := range children {
		col.Items = append(col.Items, exportItem(child, offset))
	}
	return []ExportElement{col}
}

func exportItem(item Item, offset image.Point) ExportElement {
	b := item.Base()
	base := ExportBase{
		Name:      b.Name,
		Location:  offset.Add(b.Location),
		Size:      b.Size,
		BackColor: b.BackColor,
		ForeColor: b.ForeColor,
	}

	t, ok := textOf(item)
	if !ok {
		return &ExportContainer{ExportBase: base}
	}
	et := &ExportText{
		ExportBase: base,
		Format:     t.Format,
		Align:      t.Align,
		FontSize:   t.FontSize,
	}
	if src, isExpr := t.Expression(); isExpr {
		et.Expression = src
	} else {
		et.Text = t.Text
	}
	return et
}

// InheritBackColor gives transparent children the background of their row.
type InheritBackColor struct{}

// AdjustBackColor implements BackColorRule.
func (InheritBackColor) AdjustBackColor(row Container) {
	bg := row.Base().BackColor
	if bg.A == 0 {
		return
	}
	for _, child := range row.Children() {
		if b := child.Base(); b.BackColor.A == 0 {
			b.BackColor = bg
		}
	}
}
