package reportflow

import (
	"errors"
	"fmt"
	"math"
)

// LineSpacing is the line height multiplier for wrapped text.
const LineSpacing = 1.2

// errNilGraphics is wrapped into ErrLayout by the converter.
var errNilGraphics = errors.New("graphics context is nil")

// Compile-time interface check.
var _ Layouter = (*TextLayouter)(nil)

// TextLayouter grows CanGrow text items to fit their wrapped text and
// stretches the row to its lowest child.
//
// Sizes of the row and its items are always recomputed from the size
// they had the first time they were laid out, so a long value never leaks
// its height into the next record.
type TextLayouter struct {
	design map[*BaseItem]Size
}

// NewTextLayouter returns a TextLayouter.
func NewTextLayouter() *TextLayouter {
	return &TextLayouter{design: make(map[*BaseItem]Size)}
}

// LayoutRow implements Layouter.
func (l *TextLayouter) LayoutRow(g Graphics, row Container) error {
	if g == nil {
		return errNilGraphics
	}

	rb := row.Base()
	rb.Size = l.designSize(rb)

	bottom := 0
	for _, child := range row.Children() {
		b := child.Base()
		b.Size = l.designSize(b)

		if t, ok := textOf(child); ok && t.CanGrow {
			if h := textHeight(g, t.Text, b.Size.Width); h > b.Size.Height {
				b.Size.Height = h
			}
		}
		if b.Size.Width < 0 || b.Size.Height < 0 {
			return fmt.Errorf("item %q has negative size %dx%d", b.Name, b.Size.Width, b.Size.Height)
		}
		bottom = max(bottom, b.Location.Y+b.Size.Height)
	}

	rb.Size.Height = max(rb.Size.Height, bottom)
	return nil
}

func (l *TextLayouter) designSize(b *BaseItem) Size {
	if s, ok := l.design[b]; ok {
		return s
	}
	l.design[b] = b.Size
	return b.Size
}

// textHeight returns the height of s wrapped to width.
func textHeight(g Graphics, s string, width int) int {
	if s == "" || width <= 0 {
		return 0
	}
	lines := g.WordWrap(s, float64(width))
	return int(math.Ceil(float64(len(lines)) * g.FontHeight() * LineSpacing))
}
