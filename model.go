package reportflow

import (
	"image"
	"image/color"
	"strings"
)

// Size is a width and height in points.
type Size struct {
	Width  int
	Height int
}

// BaseItem holds the geometry and colours shared by every template node.
// Location is relative to the parent container.
type BaseItem struct {
	Name      string
	Location  image.Point
	Size      Size
	BackColor color.NRGBA
	ForeColor color.NRGBA
}

// Base returns the item itself. Embedding BaseItem makes a type an Item.
func (b *BaseItem) Base() *BaseItem { return b }

// Bounds returns the item rectangle relative to its parent.
func (b *BaseItem) Bounds() image.Rectangle {
	return image.Rectangle{
		Min: b.Location,
		Max: b.Location.Add(image.Pt(b.Size.Width, b.Size.Height)),
	}
}

// Item is any node of a report template.
type Item interface {
	Base() *BaseItem
}

// Container is an item with ordered children.
type Container interface {
	Item
	Children() []Item
}

// ColumnBuilder is implemented by containers that can be flattened into
// export elements. Containers without it are not directly printable.
type ColumnBuilder interface {
	Container
	CreateExportColumn() *ExportContainer
}

// RowItem is implemented by every kind of row.
type RowItem interface {
	Container
	AsRow() *Row
}

// TextFormat selects how a text item is rendered.
type TextFormat string

// Text formats.
const (
	FormatPlain    TextFormat = "plain"
	FormatMarkdown TextFormat = "markdown"
)

// Alignment is the horizontal alignment of text inside its box.
type Alignment string

// Alignments.
const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// TextItem is a static or computed text box. A Text starting with "="
// is an expression resolved after layout.
type TextItem struct {
	BaseItem
	Text     string
	Format   TextFormat
	Align    Alignment
	FontSize float64
	CanGrow  bool
}

// Expression returns the expression source and true when Text is "=expr".
func (t *TextItem) Expression() (string, bool) {
	if !strings.HasPrefix(t.Text, "=") {
		return "", false
	}
	return strings.TrimSpace(t.Text[1:]), true
}

// DataItem is a text box filled from a column of the current record.
type DataItem struct {
	TextItem
	Column string
}

// textOf returns the text part of text-like items.
func textOf(item Item) (*TextItem, bool) {
	switch v := item.(type) {
	case *TextItem:
		return v, true
	case *DataItem:
		return &v.TextItem, true
	}
	return nil, false
}

// Row is a simple container of items, printed once per record.
type Row struct {
	BaseItem
	Items []Item
}

// Children returns the row items.
func (r *Row) Children() []Item { return r.Items }

// AsRow returns r.
func (r *Row) AsRow() *Row { return r }

// CreateExportColumn returns an empty export container carrying the row
// geometry and colours.
func (r *Row) CreateExportColumn() *ExportContainer {
	return &ExportContainer{
		ExportBase: ExportBase{
			Name:      r.Name,
			Size:      r.Size,
			BackColor: r.BackColor,
			ForeColor: r.ForeColor,
		},
	}
}

// GroupedRow is a group header. It is printed once per group.
type GroupedRow struct {
	Row
	PageBreakOnGroupChange bool
}

// GroupFooter closes a group.
type GroupFooter struct {
	Row
}

// Section is a report band. SectionOffset is the y where its content
// currently starts on the page.
type Section struct {
	BaseItem
	SectionOffset int
	Items         []Item
}

// Children returns the section rows.
func (s *Section) Children() []Item { return s.Items }

// firstOf returns the first child of type T.
func firstOf[T Item](c Container) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	for _, child := range c.Children() {
		if v, ok := child.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Report is a complete report template.
type Report struct {
	Name         string
	Page         *PageSettings
	Parameters   map[string]string
	PageHeader   *Section
	ReportHeader *Section
	Detail       *Section
	ReportFooter *Section
	PageFooter   *Section

	// GroupBy names the column records are grouped by. Grouping also
	// needs a GroupedRow in the detail section.
	GroupBy string
	SortBy  string
}

// Validate checks that the report can be paginated.
func (r *Report) Validate() error {
	if r == nil || r.Detail == nil {
		return ErrEmptyReport
	}
	return r.Page.Validate()
}
