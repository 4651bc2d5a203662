package reportflow

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PointsPerInch converts inches to layout units.
const PointsPerInch = 72

// Portrait page dimensions in points.
var pageSizes = map[string]Size{
	PageSizeLetter: {Width: 612, Height: 792},
	PageSizeA4:     {Width: 595, Height: 842},
	PageSizeLegal:  {Width: 612, Height: 1008},
}

// PageSettings configures page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := pageSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// Dimensions returns the oriented page size in points. Nil or unknown
// settings fall back to the defaults.
func (p *PageSettings) Dimensions() Size {
	if p == nil {
		p = DefaultPageSettings()
	}
	size, ok := pageSizes[strings.ToLower(p.Size)]
	if !ok {
		size = pageSizes[PageSizeLetter]
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		size.Width, size.Height = size.Height, size.Width
	}
	return size
}

// MarginPoints returns the margin in points.
func (p *PageSettings) MarginPoints() int {
	if p == nil {
		return int(math.Round(DefaultMargin * PointsPerInch))
	}
	return int(math.Round(p.Margin * PointsPerInch))
}

// SectionBounds are the fixed regions of a page. All rectangles are in
// absolute page coordinates.
type SectionBounds struct {
	PageSize   Size
	Margins    image.Rectangle // printable area
	PageHeader image.Rectangle
	Detail     image.Rectangle // body where detail rows flow
	PageFooter image.Rectangle
}

// NewSectionBounds splits the printable area of p into a page header band
// of headerHeight, a page footer band of footerHeight and the body between.
func NewSectionBounds(p *PageSettings, headerHeight, footerHeight int) SectionBounds {
	size := p.Dimensions()
	m := p.MarginPoints()
	printable := image.Rect(m, m, size.Width-m, size.Height-m)

	// Overlapping bands must leave a body with a negative height;
	// image.Rect would swap the corners.
	header := image.Rectangle{
		Min: printable.Min,
		Max: image.Pt(printable.Max.X, printable.Min.Y+headerHeight),
	}
	footer := image.Rectangle{
		Min: image.Pt(printable.Min.X, printable.Max.Y-footerHeight),
		Max: printable.Max,
	}
	return SectionBounds{
		PageSize:   size,
		Margins:    printable,
		PageHeader: header,
		Detail:     image.Rectangle{Min: image.Pt(printable.Min.X, header.Max.Y), Max: image.Pt(printable.Max.X, footer.Min.Y)},
		PageFooter: footer,
	}
}

// DetailStart is the position of the first row on a fresh page.
func (b SectionBounds) DetailStart() image.Point {
	return b.Detail.Min
}

// IsPageFull reports whether r would cross the bottom of the body.
func (b SectionBounds) IsPageFull(r image.Rectangle) bool {
	return r.Max.Y > b.Detail.Max.Y
}

// Page is the page currently being laid out.
type Page struct {
	Number int
	Bounds SectionBounds
}

// NewPage returns page number 1 with the given bounds.
func NewPage(bounds SectionBounds) *Page {
	return &Page{Number: 1, Bounds: bounds}
}
