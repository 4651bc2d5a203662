package render

import (
	"github.com/alnah/go-reportflow/internal/yamlutil"
)

type yamlPage struct {
	Number   int           `yaml:"number"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Elements []yamlElement `yaml:"elements"`
}

type yamlElement struct {
	Kind       Kind          `yaml:"kind"`
	Name       string        `yaml:"name,omitempty"`
	X          int           `yaml:"x"`
	Y          int           `yaml:"y"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	BackColor  string        `yaml:"backColor,omitempty"`
	ForeColor  string        `yaml:"foreColor,omitempty"`
	Text       string        `yaml:"text,omitempty"`
	Expression string        `yaml:"expression,omitempty"`
	Markdown   bool          `yaml:"markdown,omitempty"`
	Align      string        `yaml:"align,omitempty"`
	FontSize   float64       `yaml:"fontSize,omitempty"`
	Children   []yamlElement `yaml:"children,omitempty"`
}

// YAML dumps pages with their element tree. It is meant for inspecting
// layouts and for golden files.
func YAML(pages []Page) ([]byte, error) {
	out := make([]yamlPage, len(pages))
	for i, p := range pages {
		out[i] = yamlPage{
			Number:   p.Number,
			Width:    p.Width,
			Height:   p.Height,
			Elements: toYAMLElements(p.Elements),
		}
	}
	return yamlutil.Marshal(map[string]any{"pages": out})
}

func toYAMLElements(elems []Element) []yamlElement {
	if len(elems) == 0 {
		return nil
	}
	out := make([]yamlElement, len(elems))
	for i, e := range elems {
		out[i] = yamlElement{
			Kind:       e.Kind,
			Name:       e.Name,
			X:          e.X,
			Y:          e.Y,
			Width:      e.Width,
			Height:     e.Height,
			BackColor:  Hex(e.BackColor),
			ForeColor:  Hex(e.ForeColor),
			Text:       e.Text,
			Expression: e.Expression,
			Markdown:   e.Markdown,
			Align:      e.Align,
			FontSize:   e.FontSize,
			Children:   toYAMLElements(e.Children),
		}
	}
	return out
}
