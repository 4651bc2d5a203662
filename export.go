package reportflow

import (
	"image"
	"image/color"
	"slices"
)

// ExportBase holds the absolute page geometry of a laid-out element.
type ExportBase struct {
	Name      string
	Location  image.Point
	Size      Size
	BackColor color.NRGBA
	ForeColor color.NRGBA
}

// Base returns the element itself.
func (b *ExportBase) Base() *ExportBase { return b }

// Bounds returns the element rectangle on the page.
func (b *ExportBase) Bounds() image.Rectangle {
	return image.Rectangle{
		Min: b.Location,
		Max: b.Location.Add(image.Pt(b.Size.Width, b.Size.Height)),
	}
}

// ExportElement is a positioned, sized unit ready for rendering.
type ExportElement interface {
	Base() *ExportBase
}

// ExportText is a laid-out text box. Expression is set until the
// evaluator resolves it into Text.
type ExportText struct {
	ExportBase
	Text       string
	Expression string
	Format     TextFormat
	Align      Alignment
	FontSize   float64
}

// ExportContainer owns the elements of one flattened row.
type ExportContainer struct {
	ExportBase
	Items []ExportElement
}

// Compile-time interface checks.
var (
	_ ExportElement = (*ExportText)(nil)
	_ ExportElement = (*ExportContainer)(nil)
)

// ExportCollection is the ordered list of elements laid out on the
// current page.
type ExportCollection struct {
	items []ExportElement
}

// NewExportCollection returns an empty collection.
func NewExportCollection() *ExportCollection {
	return &ExportCollection{}
}

// Add appends elements in order.
func (c *ExportCollection) Add(elems ...ExportElement) {
	c.items = append(c.items, elems...)
}

// Len returns the number of top-level elements.
func (c *ExportCollection) Len() int { return len(c.items) }

// Items returns a copy of the elements.
func (c *ExportCollection) Items() []ExportElement {
	return slices.Clone(c.items)
}

// Clear empties the collection. Slices returned by Items stay valid.
func (c *ExportCollection) Clear() {
	c.items = nil
}

// tail returns the elements appended at or after index from.
func (c *ExportCollection) tail(from int) []ExportElement {
	if from >= len(c.items) {
		return nil
	}
	return c.items[from:]
}

// ExportPage is one finished page.
type ExportPage struct {
	Number int
	Width  int
	Height int
	Items  []ExportElement
}
