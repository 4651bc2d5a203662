package reportflow

import (
	"fmt"
	"image"
)

// Paginate lays out report against nav and returns the finished pages.
//
// Report header, detail and report footer flow one after the other; page
// header and footer rows are stamped on every page when it is flushed,
// with expressions evaluated against that page number. Empty data still
// yields one page.
//
// The report template is mutated while laying out and must not be shared
// between concurrent calls.
func Paginate(report *Report, nav DataNavigator, opts ...ConverterOption) ([]*ExportPage, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}

	bounds := NewSectionBounds(report.Page, bandHeight(report.PageHeader), bandHeight(report.PageFooter))
	if bounds.Detail.Dy() <= 0 {
		return nil, fmt.Errorf("%w: page header and footer leave no room for the body", ErrInvalidTemplate)
	}

	dc, err := NewDetailConverter(nav, NewPage(bounds), NewTextLayouter(), opts...)
	if err != nil {
		return nil, err
	}

	p := &paginator{report: report, conv: dc}
	dc.PageFull.Subscribe(p.finishPage)

	list := NewExportCollection()
	if report.ReportHeader != nil {
		if err := dc.ConvertRows(list, report.ReportHeader); err != nil {
			return nil, fmt.Errorf("report header: %w", err)
		}
	}
	if err := dc.ConvertSection(list, report.Detail); err != nil {
		return nil, fmt.Errorf("detail: %w", err)
	}
	if report.ReportFooter != nil {
		if err := dc.ConvertRows(list, report.ReportFooter); err != nil {
			return nil, fmt.Errorf("report footer: %w", err)
		}
	}
	dc.ForcePageBreak(list, report.Detail)

	if p.err != nil {
		return nil, p.err
	}
	return p.pages, nil
}

// paginator collects flushed pages.
type paginator struct {
	report *Report
	conv   *DetailConverter
	pages  []*ExportPage
	err    error
}

// finishPage stamps page bands around ev.Items and advances the page number.
func (p *paginator) finishPage(ev PageFullEvent) {
	bounds := ev.Page.Bounds
	var items []ExportElement

	header, err := p.stamp(p.report.PageHeader, bounds.PageHeader.Min)
	p.keep(err)
	items = append(items, header...)
	items = append(items, ev.Items...)
	footer, err := p.stamp(p.report.PageFooter, bounds.PageFooter.Min)
	p.keep(err)
	items = append(items, footer...)

	p.pages = append(p.pages, &ExportPage{
		Number: ev.Page.Number,
		Width:  bounds.PageSize.Width,
		Height: bounds.PageSize.Height,
		Items:  items,
	})
	p.conv.logger.Debug("page finished", "page", ev.Page.Number, "elements", len(items))
	ev.Page.Number++
}

// stamp flattens the rows of a page band at origin. Rows keep their
// location inside the band and are restored to their design size.
func (p *paginator) stamp(section *Section, origin image.Point) ([]ExportElement, error) {
	if section == nil {
		return nil, nil
	}
	c := p.conv.Converter
	var out []ExportElement
	for _, item := range section.Items {
		row, ok := item.(Container)
		if !ok {
			continue
		}
		saved := row.Base().Size
		elems, err := p.stampRow(c, row, origin.Add(row.Base().Location))
		row.Base().Size = saved
		if err != nil {
			return out, err
		}
		out = append(out, elems...)
	}
	return out, nil
}

func (p *paginator) stampRow(c *Converter, row Container, at image.Point) ([]ExportElement, error) {
	if err := c.fill(c.nav, row); err != nil {
		return nil, err
	}
	if err := c.layouter.LayoutRow(c.graphics, row); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayout, row.Base().Name, err)
	}
	elems := Flatten(row, at, c.backColor)
	if c.evaluator != nil {
		if err := c.evaluator.Evaluate(elems); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
		}
	}
	return elems, nil
}

func (p *paginator) keep(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

// bandHeight is the height reserved for a page band: the section height
// or, when larger, the bottom of its lowest row.
func bandHeight(s *Section) int {
	if s == nil {
		return 0
	}
	h := s.Size.Height
	for _, item := range s.Items {
		b := item.Base()
		h = max(h, b.Location.Y+b.Size.Height)
	}
	return h
}
