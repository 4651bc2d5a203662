// Package measure provides the graphics context used for text metrics
// during row layout and for drawing PNG pages.
package measure

import (
	"errors"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// ErrFontLoad indicates a font file could not be loaded.
var ErrFontLoad = errors.New("failed to load font")

// DefaultFontSize is used when a Font leaves Size at zero.
const DefaultFontSize = 10.0

// Font selects a TrueType/OpenType face. An empty Path uses the built-in
// fixed 7x13 bitmap face, which needs no files and measures the same on
// every machine.
type Font struct {
	Path string
	Size float64
}

// Face loads the font face described by f.
func Face(f Font) (font.Face, error) {
	if f.Path == "" {
		return basicfont.Face7x13, nil
	}
	size := f.Size
	if size <= 0 {
		size = DefaultFontSize
	}
	face, err := gg.LoadFontFace(f.Path, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontLoad, f.Path, err)
	}
	return face, nil
}

// NewContext returns a width x height drawing context with f loaded.
// A 1x1 context is enough for measurement.
func NewContext(width, height int, f Font) (*gg.Context, error) {
	face, err := Face(f)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(width, height)
	dc.SetFontFace(face)
	return dc, nil
}

// NewMeasureContext returns a context sized for measurement only.
func NewMeasureContext(f Font) (*gg.Context, error) {
	return NewContext(1, 1, f)
}
