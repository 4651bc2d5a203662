package reportflow

// DetailConverter drives a Converter over every record of its navigator.
// It decides where pages break; the Converter does the per-row work.
type DetailConverter struct {
	*Converter
}

// NewDetailConverter creates a DetailConverter. See NewConverter.
func NewDetailConverter(nav DataNavigator, page *Page, layouter Layouter, opts ...ConverterOption) (*DetailConverter, error) {
	c, err := NewConverter(nav, page, layouter, opts...)
	if err != nil {
		return nil, err
	}
	c.breakOnOverflow = true
	return &DetailConverter{Converter: c}, nil
}

// Convert converts item when it is a section and records the parent
// rectangle. Other items yield an empty collection.
func (d *DetailConverter) Convert(parent, item Item) (*ExportCollection, error) {
	list, err := d.Converter.Convert(parent, item)
	if err != nil {
		return nil, err
	}
	section, ok := item.(*Section)
	if !ok {
		return list, nil
	}
	if err := d.ConvertSection(list, section); err != nil {
		return nil, err
	}
	return list, nil
}

// ConvertSection converts section once per record. A section with a
// GroupedRow bound to a grouped navigator is converted group by group;
// without a GroupedRow the records of each group follow one another.
func (d *DetailConverter) ConvertSection(list *ExportCollection, section *Section) error {
	if _, ok := firstOf[*GroupedRow](section); ok {
		d.nav.Reset()
		if d.nav.MoveNext() && d.nav.HasChildren() {
			return d.convertGroups(list, section)
		}
	}
	return d.convertRecords(list, section)
}

// ConvertRows converts the rows of a static section once, flowing with
// the detail. It is used for report headers and footers.
func (d *DetailConverter) ConvertRows(list *ExportCollection, section *Section) error {
	d.fitSection(section)
	for _, row := range section.Items {
		c, ok := row.(Container)
		if !ok {
			continue
		}
		d.ensureRoom(list, section, c)
		if _, err := d.ConvertRow(list, section, c); err != nil {
			return err
		}
	}
	return nil
}

func (d *DetailConverter) convertRecords(list *ExportCollection, section *Section) error {
	rows := detailRows(section)
	d.fitSection(section)

	d.nav.Reset()
	for d.nav.MoveNext() {
		if d.nav.HasChildren() {
			if err := d.convertChildren(list, section, rows, d.nav.ChildNavigator()); err != nil {
				return err
			}
			continue
		}
		for _, row := range rows {
			d.ensureRoom(list, section, row)
			if err := d.FireRowRendering(row, d.nav.Current()); err != nil {
				return err
			}
			if _, err := d.ConvertRow(list, section, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// convertChildren converts rows once per record of child.
func (d *DetailConverter) convertChildren(list *ExportCollection, section *Section, rows []Container, child DataNavigator) error {
	if child == nil {
		return nil
	}
	child.Reset()
	for child.MoveNext() {
		for _, row := range rows {
			d.ensureRoom(list, section, row)
			if _, err := d.ConvertGroupChildren(list, section, row, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// convertGroups expects the navigator on its first group.
func (d *DetailConverter) convertGroups(list *ExportCollection, section *Section) error {
	header, _ := firstOf[*GroupedRow](section)
	footer, hasFooter := firstOf[*GroupFooter](section)
	rows := detailRows(section)
	d.fitSection(section)

	for {
		d.ensureRoom(list, section, header)
		if _, err := d.ConvertGroupHeader(list, section, header); err != nil {
			return err
		}

		if err := d.convertChildren(list, section, rows, d.nav.ChildNavigator()); err != nil {
			return err
		}

		if hasFooter {
			d.ensureRoom(list, section, footer)
		}
		if err := d.ConvertGroupFooter(section, section, list); err != nil {
			return err
		}
		if d.PageBreakAfterGroupChange(section, list) {
			d.position = d.page.Bounds.DetailStart()
		}

		if !d.nav.MoveNext() {
			return nil
		}
	}
}

// ensureRoom breaks the page when row, at its design size, would cross
// the body bottom at the current position. Rows that grow during layout
// are checked again before they are placed. An empty page always takes
// the row, so a row taller than the body cannot loop.
func (d *DetailConverter) ensureRoom(list *ExportCollection, section *Section, row Container) {
	if list.Len() == 0 {
		return
	}
	if !d.page.Bounds.IsPageFull(rowRect(d.origin(), row.Base().Size)) {
		return
	}
	d.ForcePageBreak(list, section)
	d.position = d.page.Bounds.DetailStart()
}

// fitSection places the section start at the current position.
func (d *DetailConverter) fitSection(section *Section) {
	section.SectionOffset = d.origin().Y
}

// detailRows returns the rows printed once per record: every row that is
// neither a group header nor a group footer.
func detailRows(section *Section) []Container {
	var rows []Container
	for _, item := range section.Items {
		switch item.(type) {
		case *GroupedRow, *GroupFooter:
			continue
		}
		if c, ok := item.(RowItem); ok {
			rows = append(rows, c)
		}
	}
	return rows
}
