// Package template decodes the YAML report template format.
//
//	name: Sales
//	page: {size: a4, orientation: portrait, margin: 0.5}
//	groupBy: region
//	pageHeader:
//	  rows:
//	    - height: 20
//	      items:
//	        - {kind: text, text: "=Param('title')", width: 300, height: 20}
//	detail:
//	  rows:
//	    - kind: groupHeader
//	      height: 18
//	      pageBreakOnGroupChange: true
//	      items:
//	        - {kind: field, column: region, width: 200, height: 18}
//	    - height: 14
//	      items:
//	        - {kind: field, column: product, width: 200, height: 14, canGrow: true}
//	        - {kind: text, text: "=Fields.qty * Fields.price", x: 210, width: 80, height: 14, align: right}
//
// The package only decodes and validates; the reportflow package builds
// the model from these values.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-reportflow/internal/yamlutil"
)

// ErrInvalid indicates a structurally invalid template.
var ErrInvalid = errors.New("invalid template")

// Row kinds.
const (
	KindRow         = "row"
	KindGroupHeader = "groupHeader"
	KindGroupFooter = "groupFooter"
)

// Item kinds.
const (
	KindText  = "text"
	KindField = "field"
)

// MaxNameLength limits template, row and item names.
const MaxNameLength = 200

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Template is the decoded document.
type Template struct {
	Name         string            `yaml:"name"`
	Page         *Page             `yaml:"page"`
	Parameters   map[string]string `yaml:"parameters"`
	GroupBy      string            `yaml:"groupBy"`
	SortBy       string            `yaml:"sortBy"`
	PageHeader   *Section          `yaml:"pageHeader"`
	ReportHeader *Section          `yaml:"reportHeader"`
	Detail       *Section          `yaml:"detail"`
	ReportFooter *Section          `yaml:"reportFooter"`
	PageFooter   *Section          `yaml:"pageFooter"`
}

// Page holds page settings.
type Page struct {
	Size        string  `yaml:"size"`
	Orientation string  `yaml:"orientation"`
	Margin      float64 `yaml:"margin"`
}

// Section is a band of rows.
type Section struct {
	Height    int    `yaml:"height"`
	BackColor string `yaml:"backColor"`
	Rows      []Row  `yaml:"rows"`
}

// Row is a row, group header or group footer.
type Row struct {
	Name                   string `yaml:"name"`
	Kind                   string `yaml:"kind"`
	Width                  int    `yaml:"width"`
	Height                 int    `yaml:"height"`
	BackColor              string `yaml:"backColor"`
	PageBreakOnGroupChange bool   `yaml:"pageBreakOnGroupChange"`
	Items                  []Item `yaml:"items"`
}

// Item is a text or field box.
type Item struct {
	Name      string  `yaml:"name"`
	Kind      string  `yaml:"kind"`
	Text      string  `yaml:"text"`
	Column    string  `yaml:"column"`
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Format    string  `yaml:"format"`
	Align     string  `yaml:"align"`
	FontSize  float64 `yaml:"fontSize"`
	CanGrow   bool    `yaml:"canGrow"`
	BackColor string  `yaml:"backColor"`
	ForeColor string  `yaml:"foreColor"`
}

// Parse decodes and validates a template. Unknown keys are rejected.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yamlutil.UnmarshalStrict(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks kinds, sizes and colours.
func (t *Template) Validate() error {
	if len(t.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, MaxNameLength)
	}
	if t.Detail == nil {
		return fmt.Errorf("%w: detail section is required", ErrInvalid)
	}

	sections := []struct {
		name string
		s    *Section
	}{
		{"pageHeader", t.PageHeader},
		{"reportHeader", t.ReportHeader},
		{"detail", t.Detail},
		{"reportFooter", t.ReportFooter},
		{"pageFooter", t.PageFooter},
	}
	for _, sec := range sections {
		if sec.s == nil {
			continue
		}
		if err := sec.s.validate(sec.name == "detail"); err != nil {
			return fmt.Errorf("%s: %w", sec.name, err)
		}
	}
	return nil
}

func (s *Section) validate(groupsAllowed bool) error {
	if s.Height < 0 {
		return fmt.Errorf("%w: negative height %d", ErrInvalid, s.Height)
	}
	if err := validateColor(s.BackColor); err != nil {
		return err
	}
	for i, r := range s.Rows {
		if err := r.validate(groupsAllowed); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func (r *Row) validate(groupsAllowed bool) error {
	switch r.Kind {
	case "", KindRow:
	case KindGroupHeader, KindGroupFooter:
		if !groupsAllowed {
			return fmt.Errorf("%w: %s is only allowed in the detail section", ErrInvalid, r.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown row kind %q", ErrInvalid, r.Kind)
	}
	if r.PageBreakOnGroupChange && r.Kind != KindGroupHeader {
		return fmt.Errorf("%w: pageBreakOnGroupChange needs kind %s", ErrInvalid, KindGroupHeader)
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("%w: negative row size %dx%d", ErrInvalid, r.Width, r.Height)
	}
	if len(r.Name) > MaxNameLength {
		return fmt.Errorf("%w: row name exceeds %d characters", ErrInvalid, MaxNameLength)
	}
	if err := validateColor(r.BackColor); err != nil {
		return err
	}
	for i, it := range r.Items {
		if err := it.validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func (it *Item) validate() error {
	switch it.Kind {
	case "", KindText:
	case KindField:
		if strings.TrimSpace(it.Column) == "" {
			return fmt.Errorf("%w: field item needs a column", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown item kind %q", ErrInvalid, it.Kind)
	}
	switch it.Format {
	case "", "plain", "markdown":
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalid, it.Format)
	}
	switch it.Align {
	case "", "left", "center", "right":
	default:
		return fmt.Errorf("%w: unknown align %q", ErrInvalid, it.Align)
	}
	if it.Width < 0 || it.Height < 0 || it.FontSize < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalid)
	}
	if len(it.Name) > MaxNameLength {
		return fmt.Errorf("%w: item name exceeds %d characters", ErrInvalid, MaxNameLength)
	}
	if err := validateColor(it.BackColor); err != nil {
		return err
	}
	return validateColor(it.ForeColor)
}

func validateColor(s string) error {
	if s == "" || hexColor.MatchString(s) {
		return nil
	}
	return fmt.Errorf("%w: color %q must be #rgb, #rrggbb or #rrggbbaa", ErrInvalid, s)
}
