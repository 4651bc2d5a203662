package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrHTMLRender indicates HTML rendering failed.
var ErrHTMLRender = errors.New("HTML rendering failed")

// DefaultCodeStyle is the chroma style for code blocks in markdown text.
const DefaultCodeStyle = "github"

// pageCSS lays out fixed-size pages that print one per sheet.
const pageCSS = `@page { size: %dpt %dpt; margin: 0; }
body { margin: 0; }
.page { position: relative; width: %dpt; height: %dpt; overflow: hidden; page-break-after: always; break-after: page; }
.page:last-child { page-break-after: auto; break-after: auto; }
.box, .text { position: absolute; box-sizing: border-box; }
.text { overflow: hidden; white-space: pre-wrap; }
.text p { margin: 0; }
`

// HTMLOptions configures an HTML document.
type HTMLOptions struct {
	Title     string
	ReportID  string
	CSS       string // appended after the built-in page CSS
	CodeStyle string // chroma style name, DefaultCodeStyle when empty
}

// HTMLRenderer renders pages to one HTML document. Markdown text goes
// through goldmark with syntax highlighting.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	return &HTMLRenderer{md: md}
}

// Render builds the document. Each page is a div.page holding absolutely
// positioned boxes and texts.
func (r *HTMLRenderer) Render(ctx context.Context, pages []Page, opts HTMLOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	if opts.ReportID != "" {
		head.AppendChild(element(atom.Meta, "name", "report-id", "content", opts.ReportID))
	}
	title := element(atom.Title)
	title.AppendChild(text(opts.Title))
	head.AppendChild(title)

	body := element(atom.Body)
	markdown := false
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		div, usedMarkdown, err := r.page(p)
		if err != nil {
			return nil, err
		}
		markdown = markdown || usedMarkdown
		body.AppendChild(div)
	}

	css, err := documentCSS(pages, opts, markdown)
	if err != nil {
		return nil, err
	}
	style := element(atom.Style)
	style.AppendChild(text(sanitizeCSS(css)))
	head.AppendChild(style)

	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLRender, err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) page(p Page) (*html.Node, bool, error) {
	div := element(atom.Div,
		"class", "page",
		"data-page", fmt.Sprint(p.Number),
		"style", fmt.Sprintf("width: %dpt; height: %dpt;", p.Width, p.Height),
	)

	markdown := false
	var err error
	walk(p.Elements, func(e *Element) {
		if err != nil {
			return
		}
		var n *html.Node
		n, err = r.element(e)
		if err != nil {
			return
		}
		markdown = markdown || e.Markdown
		div.AppendChild(n)
	})
	return div, markdown, err
}

func (r *HTMLRenderer) element(e *Element) (*html.Node, error) {
	var style strings.Builder
	fmt.Fprintf(&style, "left: %dpt; top: %dpt; width: %dpt; height: %dpt;", e.X, e.Y, e.Width, e.Height)
	if bg := Hex(e.BackColor); bg != "" {
		fmt.Fprintf(&style, " background: %s;", bg)
	}

	n := element(atom.Div, "class", string(e.Kind))
	if e.Name != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "data-name", Val: e.Name})
	}
	if e.Kind != KindText {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style.String()})
		return n, nil
	}

	if fg := Hex(e.ForeColor); fg != "" {
		fmt.Fprintf(&style, " color: %s;", fg)
	}
	if e.Align != "" {
		fmt.Fprintf(&style, " text-align: %s;", e.Align)
	}
	if e.FontSize > 0 {
		fmt.Fprintf(&style, " font-size: %gpt;", e.FontSize)
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style.String()})

	if !e.Markdown {
		n.AppendChild(text(e.Text))
		return n, nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(e.Text), &buf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHTMLRender, e.Name, err)
	}
	nodes, err := html.ParseFragment(&buf, element(atom.Div))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHTMLRender, e.Name, err)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return n, nil
}

// documentCSS returns page CSS sized from the first page, the code
// highlighting CSS when markdown is used, then the caller CSS.
func documentCSS(pages []Page, opts HTMLOptions, markdown bool) (string, error) {
	var b strings.Builder
	if len(pages) > 0 {
		w, h := pages[0].Width, pages[0].Height
		fmt.Fprintf(&b, pageCSS, w, h, w, h)
	}
	if markdown {
		name := opts.CodeStyle
		if name == "" {
			name = DefaultCodeStyle
		}
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err := formatter.WriteCSS(&b, styles.Get(name)); err != nil {
			return "", fmt.Errorf("%w: code style %q: %v", ErrHTMLRender, name, err)
		}
	}
	if opts.CSS != "" {
		b.WriteString("\n")
		b.WriteString(opts.CSS)
	}
	return b.String(), nil
}

// sanitizeCSS keeps CSS from closing the style element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// element creates an element node with key/value attribute pairs.
func element(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
