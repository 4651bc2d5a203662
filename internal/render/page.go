// Package render draws laid-out report pages as HTML, PNG or a YAML dump.
//
// Element coordinates are absolute page points. Children of a box carry
// their own absolute coordinates, so renderers draw them as siblings
// after their box.
package render

import (
	"fmt"
	"image/color"
)

// Kind distinguishes element shapes.
type Kind string

// Element kinds.
const (
	KindBox  Kind = "box"
	KindText Kind = "text"
)

// Page is one page to draw.
type Page struct {
	Number   int
	Width    int
	Height   int
	Elements []Element
}

// Element is a box or a text.
type Element struct {
	Kind       Kind
	Name       string
	X, Y       int
	Width      int
	Height     int
	BackColor  color.NRGBA
	ForeColor  color.NRGBA
	Text       string
	Expression string
	Markdown   bool
	Align      string
	FontSize   float64
	Children   []Element
}

// walk calls fn for every element in drawing order: a box, then its
// children.
func walk(elems []Element, fn func(*Element)) {
	for i := range elems {
		fn(&elems[i])
		walk(elems[i].Children, fn)
	}
}

// Hex formats c as #rrggbb, or #rrggbbaa when not opaque. Transparent
// colours format as the empty string.
func Hex(c color.NRGBA) string {
	switch c.A {
	case 0:
		return ""
	case 0xff:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	default:
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
}
