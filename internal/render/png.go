package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/alnah/go-reportflow/internal/measure"
)

// ErrPNGRender indicates PNG rendering failed.
var ErrPNGRender = errors.New("PNG rendering failed")

// PNG limits.
const (
	DefaultScale = 1.0
	MaxScale     = 4.0
	lineSpacing  = 1.2
)

// PNGOptions configures raster output.
type PNGOptions struct {
	Font  measure.Font
	Scale float64 // pixels per point, DefaultScale when zero
}

// PNG draws each page to its own image. Markdown text is drawn as its
// source.
func PNG(ctx context.Context, pages []Page, opts PNGOptions) ([][]byte, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	if scale < 0 || scale > MaxScale {
		return nil, fmt.Errorf("%w: scale %.2f out of range (0, %.0f]", ErrPNGRender, scale, MaxScale)
	}

	out := make([][]byte, 0, len(pages))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := drawPage(p, opts.Font, scale)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func drawPage(p Page, font measure.Font, scale float64) ([]byte, error) {
	w := int(math.Ceil(float64(p.Width) * scale))
	h := int(math.Ceil(float64(p.Height) * scale))
	dc, err := measure.NewContext(w, h, font)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrPNGRender, p.Number, err)
	}
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(scale, scale)

	walk(p.Elements, func(e *Element) { drawElement(dc, e) })

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrPNGRender, p.Number, err)
	}
	return buf.Bytes(), nil
}

func drawElement(dc *gg.Context, e *Element) {
	x, y := float64(e.X), float64(e.Y)
	w, h := float64(e.Width), float64(e.Height)

	if e.BackColor.A > 0 {
		dc.DrawRectangle(x, y, w, h)
		dc.SetColor(e.BackColor)
		dc.Fill()
	}
	if e.Kind != KindText || e.Text == "" {
		return
	}

	fg := color.Color(color.Black)
	if e.ForeColor.A > 0 {
		fg = e.ForeColor
	}
	dc.SetColor(fg)

	ax, align := 0.0, gg.AlignLeft
	switch e.Align {
	case "center":
		ax, align = 0.5, gg.AlignCenter
		x += w / 2
	case "right":
		ax, align = 1, gg.AlignRight
		x += w
	}

	dc.Push()
	dc.DrawRectangle(float64(e.X), y, w, h)
	dc.Clip()
	dc.DrawStringWrapped(e.Text, x, y, ax, 0, w, lineSpacing, align)
	dc.ResetClip()
	dc.Pop()
}
