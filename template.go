package reportflow

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/alnah/go-reportflow/internal/template"
)

// ParseReport builds a Report from a YAML template.
//
// Rows of a section are stacked: each row is located below the previous
// one. Items are located at their x/y inside the row. A row without a
// width takes the printable width of the page.
func ParseReport(data []byte) (*Report, error) {
	tmpl, err := template.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	r := &Report{
		Name:       tmpl.Name,
		Parameters: tmpl.Parameters,
		GroupBy:    tmpl.GroupBy,
		SortBy:     tmpl.SortBy,
	}
	if tmpl.Page != nil {
		r.Page = toPageSettings(tmpl.Page)
		if err := r.Page.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
	}

	width := NewSectionBounds(r.Page, 0, 0).Margins.Dx()
	r.PageHeader = toSection("pageHeader", tmpl.PageHeader, width)
	r.ReportHeader = toSection("reportHeader", tmpl.ReportHeader, width)
	r.Detail = toSection("detail", tmpl.Detail, width)
	r.ReportFooter = toSection("reportFooter", tmpl.ReportFooter, width)
	r.PageFooter = toSection("pageFooter", tmpl.PageFooter, width)
	return r, nil
}

// toPageSettings fills missing page values with defaults.
func toPageSettings(p *template.Page) *PageSettings {
	ps := DefaultPageSettings()
	if p.Size != "" {
		ps.Size = strings.ToLower(p.Size)
	}
	if p.Orientation != "" {
		ps.Orientation = strings.ToLower(p.Orientation)
	}
	if p.Margin != 0 {
		ps.Margin = p.Margin
	}
	return ps
}

func toSection(name string, s *template.Section, width int) *Section {
	if s == nil {
		return nil
	}
	sec := &Section{
		BaseItem: BaseItem{Name: name, BackColor: mustColor(s.BackColor)},
	}
	y := 0
	for i, tr := range s.Rows {
		row := toRow(tr, width)
		b := row.Base()
		if b.Name == "" {
			b.Name = name + "." + strconv.Itoa(i)
		}
		b.Location = image.Pt(0, y)
		y += b.Size.Height
		sec.Items = append(sec.Items, row)
	}
	sec.Size = Size{Width: width, Height: max(s.Height, y)}
	return sec
}

func toRow(tr template.Row, width int) RowItem {
	row := Row{
		BaseItem: BaseItem{
			Name:      tr.Name,
			Size:      Size{Width: tr.Width, Height: tr.Height},
			BackColor: mustColor(tr.BackColor),
		},
	}
	if row.Size.Width == 0 {
		row.Size.Width = width
	}
	for _, ti := range tr.Items {
		row.Items = append(row.Items, toItem(ti))
	}

	switch tr.Kind {
	case template.KindGroupHeader:
		return &GroupedRow{Row: row, PageBreakOnGroupChange: tr.PageBreakOnGroupChange}
	case template.KindGroupFooter:
		return &GroupFooter{Row: row}
	default:
		return &row
	}
}

func toItem(ti template.Item) Item {
	text := TextItem{
		BaseItem: BaseItem{
			Name:      ti.Name,
			Location:  image.Pt(ti.X, ti.Y),
			Size:      Size{Width: ti.Width, Height: ti.Height},
			BackColor: mustColor(ti.BackColor),
			ForeColor: mustColor(ti.ForeColor),
		},
		Text:     ti.Text,
		Format:   TextFormat(ti.Format),
		Align:    Alignment(ti.Align),
		FontSize: ti.FontSize,
		CanGrow:  ti.CanGrow,
	}
	if text.Format == "" {
		text.Format = FormatPlain
	}
	if text.Align == "" {
		text.Align = AlignLeft
	}
	if text.Name == "" {
		text.Name = ti.Column
	}

	if ti.Kind == template.KindField {
		return &DataItem{TextItem: text, Column: ti.Column}
	}
	return &text
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa. Without an alpha part the
// colour is opaque.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 || !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidTemplate, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidTemplate, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// mustColor parses a colour already checked by template validation. The
// empty string is transparent.
func mustColor(s string) color.NRGBA {
	if s == "" {
		return color.NRGBA{}
	}
	c, err := ParseColor(s)
	if err != nil {
		return color.NRGBA{}
	}
	return c
}
