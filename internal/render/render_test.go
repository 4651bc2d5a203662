package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func samplePages() []Page {
	row := Element{
		Kind: KindBox, Name: "detail.0",
		X: 36, Y: 36, Width: 200, Height: 20,
		BackColor: color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff},
		Children: []Element{
			{Kind: KindText, Name: "product", X: 36, Y: 36, Width: 100, Height: 20, Text: "Widget <b>"},
			{Kind: KindText, Name: "total", X: 140, Y: 36, Width: 90, Height: 20, Text: "42", Align: "right", Expression: "Fields.qty"},
		},
	}
	return []Page{
		{Number: 1, Width: 612, Height: 792, Elements: []Element{row}},
		{Number: 2, Width: 612, Height: 792},
	}
}

// ---------------------------------------------------------------------------
// TestHTML
// ---------------------------------------------------------------------------

func TestHTMLRenderer_Render(t *testing.T) {
	t.Parallel()

	out, err := NewHTMLRenderer().Render(context.Background(), samplePages(), HTMLOptions{
		Title:    "Sales",
		ReportID: "abc-123",
		CSS:      "body { color: red; }</style><script>",
	})
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	doc := string(out)

	checks := []struct {
		name string
		want string
	}{
		{name: "doctype", want: "<!DOCTYPE html>"},
		{name: "title", want: "<title>Sales</title>"},
		{name: "report id", want: `content="abc-123"`},
		{name: "page size", want: "size: 612pt 792pt"},
		{name: "box background", want: "background: #eeeeee"},
		{name: "text aligned", want: "text-align: right"},
		{name: "text escaped", want: "Widget &lt;b&gt;"},
		{name: "user css", want: "body { color: red; }"},
	}
	for _, c := range checks {
		if !strings.Contains(doc, c.want) {
			t.Errorf("%s: output missing %q", c.name, c.want)
		}
	}

	if got := strings.Count(doc, `class="page"`); got != 2 {
		t.Errorf("page divs = %d, want 2", got)
	}
	if strings.Contains(doc, "</style><script>") {
		t.Error("user CSS closed the style element")
	}
}

func TestHTMLRenderer_Markdown(t *testing.T) {
	t.Parallel()

	pages := []Page{{
		Number: 1, Width: 300, Height: 300,
		Elements: []Element{{
			Kind: KindText, Width: 200, Height: 100, Markdown: true,
			Text: "**bold**\n\n```go\nfunc main() {}\n```",
		}},
	}}

	out, err := NewHTMLRenderer().Render(context.Background(), pages, HTMLOptions{})
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, "<strong>bold</strong>") {
		t.Error("markdown emphasis not rendered")
	}
	if !strings.Contains(doc, `class="chroma"`) {
		t.Error("code block not highlighted")
	}
	if !strings.Contains(doc, ".chroma") {
		t.Error("highlighting CSS missing")
	}
}

func TestHTMLRenderer_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTMLRenderer().Render(ctx, samplePages(), HTMLOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestPNG
// ---------------------------------------------------------------------------

func TestPNG(t *testing.T) {
	t.Parallel()

	images, err := PNG(context.Background(), samplePages(), PNGOptions{Scale: 0.5})
	if err != nil {
		t.Fatalf("PNG() unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("len(images) = %d, want 2", len(images))
	}

	img, err := png.Decode(bytes.NewReader(images[0]))
	if err != nil {
		t.Fatalf("png.Decode() unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 306 || b.Dy() != 396 {
		t.Errorf("image size = %dx%d, want 306x396", b.Dx(), b.Dy())
	}

	// Point (138,54) is inside the row box and between the two texts.
	r, g, bl, _ := img.At(69, 27).RGBA()
	if r>>8 != 0xee || g>>8 != 0xee || bl>>8 != 0xee {
		t.Errorf("pixel (69,27) = %02x%02x%02x, want eeeeee", r>>8, g>>8, bl>>8)
	}
	r, _, _, _ = img.At(1, 1).RGBA()
	if r>>8 != 0xff {
		t.Errorf("pixel (1,1) red = %02x, want ff (white page)", r>>8)
	}
}

func TestPNG_BadScale(t *testing.T) {
	t.Parallel()

	for _, scale := range []float64{-1, MaxScale + 1} {
		if _, err := PNG(context.Background(), samplePages(), PNGOptions{Scale: scale}); !errors.Is(err, ErrPNGRender) {
			t.Errorf("PNG(scale=%v) error = %v, want ErrPNGRender", scale, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestYAML
// ---------------------------------------------------------------------------

func TestYAML(t *testing.T) {
	t.Parallel()

	out, err := YAML(samplePages())
	if err != nil {
		t.Fatalf("YAML() unexpected error: %v", err)
	}
	doc := string(out)
	for _, want := range []string{"pages:", "number: 2", "#eeeeee", "expression: Fields.qty", "children:"} {
		if !strings.Contains(doc, want) {
			t.Errorf("YAML output missing %q:\n%s", want, doc)
		}
	}
}

func TestHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		c    color.NRGBA
		want string
	}{
		{c: color.NRGBA{}, want: ""},
		{c: color.NRGBA{R: 1, G: 2, B: 3, A: 0xff}, want: "#010203"},
		{c: color.NRGBA{R: 0xff, A: 0x80}, want: "#ff000080"},
	}
	for _, tt := range tests {
		if got := Hex(tt.c); got != tt.want {
			t.Errorf("Hex(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}
