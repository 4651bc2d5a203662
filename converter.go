package reportflow

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/alnah/go-reportflow/internal/measure"
)

// DataNavigator is the cursor over the records a report is bound to.
// Reset positions it before the first record; MoveNext advances and
// reports whether a record is current.
type DataNavigator interface {
	Count() int
	CurrentRow() int
	Current() Record
	Reset()
	MoveNext() bool
	HasMoreData() bool
	Fill(items []Item) error
	HasChildren() bool
	ChildNavigator() DataNavigator
}

// Graphics provides the text metrics used during layout.
// *gg.Context satisfies it.
type Graphics interface {
	MeasureString(s string) (w, h float64)
	WordWrap(s string, width float64) []string
	FontHeight() float64
}

// Layouter computes child geometry of a row in place.
type Layouter interface {
	LayoutRow(g Graphics, row Container) error
}

// Evaluator resolves expressions of freshly laid-out elements.
type Evaluator interface {
	Evaluate(elems []ExportElement) error
}

// BackColorRule adjusts colours of a row before it is flattened.
type BackColorRule interface {
	AdjustBackColor(row Container)
}

// pageBinder is implemented by evaluators that need the current page.
type pageBinder interface {
	BindPage(p *Page)
}

// DefaultRowGap is the vertical gap unit between rows; three units
// separate consecutive rows.
const DefaultRowGap = 1

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithGraphics sets the metrics used by the layouter.
func WithGraphics(g Graphics) ConverterOption {
	return func(c *Converter) {
		if g != nil {
			c.graphics = g
		}
	}
}

// WithEvaluator sets the expression evaluator. Without one, expressions
// are left unresolved.
func WithEvaluator(e Evaluator) ConverterOption {
	return func(c *Converter) { c.evaluator = e }
}

// WithBackColorRule replaces InheritBackColor.
func WithBackColorRule(r BackColorRule) ConverterOption {
	return func(c *Converter) {
		if r != nil {
			c.backColor = r
		}
	}
}

// WithLayouter replaces the layouter passed to the constructor.
func WithLayouter(l Layouter) ConverterOption {
	return func(c *Converter) {
		if l != nil {
			c.layouter = l
		}
	}
}

// WithRowGap sets the gap unit between rows.
// Panics if gap < 0 (programmer error).
func WithRowGap(gap int) ConverterOption {
	if gap < 0 {
		panic("reportflow: WithRowGap gap must not be negative")
	}
	return func(c *Converter) { c.gap = gap }
}

// WithConverterLogger sets the logger for page and group transitions.
func WithConverterLogger(l *slog.Logger) ConverterOption {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// Converter turns template rows bound to records into export elements and
// tracks the vertical position on the current page.
//
// The export collection is owned by the caller and passed into each call.
// A Converter is not safe for concurrent use.
type Converter struct {
	PageFull             Signal[PageFullEvent]
	SectionRendering     Signal[SectionRenderEvent]
	GroupHeaderRendering Signal[GroupHeaderEvent]
	GroupFooterRendering Signal[GroupFooterEvent]
	RowRendering         Signal[RowRenderEvent]

	nav       DataNavigator
	page      *Page
	layouter  Layouter
	graphics  Graphics
	evaluator Evaluator
	backColor BackColorRule
	logger    *slog.Logger
	gap       int

	// breakOnOverflow moves a row that grew past the body bottom during
	// layout to the next page.
	breakOnOverflow bool

	position image.Point
	parent   image.Rectangle
}

// NewConverter creates a Converter positioned at the top of the page body.
func NewConverter(nav DataNavigator, page *Page, layouter Layouter, opts ...ConverterOption) (*Converter, error) {
	if nav == nil {
		return nil, ErrNilNavigator
	}
	if page == nil {
		return nil, ErrNilPage
	}
	if layouter == nil {
		return nil, ErrNilLayouter
	}

	c := &Converter{
		nav:       nav,
		page:      page,
		layouter:  layouter,
		backColor: InheritBackColor{},
		logger:    slog.New(slog.DiscardHandler),
		gap:       DefaultRowGap,
		position:  page.Bounds.DetailStart(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.graphics == nil {
		// The built-in face needs no font file and cannot fail.
		dc, err := measure.NewMeasureContext(measure.Font{})
		if err != nil {
			return nil, err
		}
		c.graphics = dc
	}
	if pb, ok := c.evaluator.(pageBinder); ok {
		pb.BindPage(page)
	}
	return c, nil
}

// Page returns the page being laid out.
func (c *Converter) Page() *Page { return c.page }

// SectionBounds returns the regions of the current page.
func (c *Converter) SectionBounds() SectionBounds { return c.page.Bounds }

// DataNavigator returns the record cursor.
func (c *Converter) DataNavigator() DataNavigator { return c.nav }

// Layouter returns the row layouter.
func (c *Converter) Layouter() Layouter { return c.layouter }

// Graphics returns the metrics context.
func (c *Converter) Graphics() Graphics { return c.graphics }

// ParentRectangle returns the rectangle recorded by the last Convert call.
func (c *Converter) ParentRectangle() image.Rectangle { return c.parent }

// CurrentPosition returns where the next row will be placed.
func (c *Converter) CurrentPosition() image.Point { return c.position }

// Convert is the generic entry point for items without a dedicated
// conversion. It records the parent rectangle and returns an empty
// collection.
func (c *Converter) Convert(parent, item Item) (*ExportCollection, error) {
	c.parent = image.Rectangle{}
	if parent != nil {
		c.parent = parent.Base().Bounds()
	}
	return NewExportCollection(), nil
}

// ConvertRow lays out one row against the current record, appends its
// flattened elements to list and returns the next position.
// The row size is restored afterwards so the template can be reused.
func (c *Converter) ConvertRow(list *ExportCollection, section *Section, row Container) (image.Point, error) {
	base := row.Base()
	saved := base.Size
	defer func() { base.Size = saved }()

	if err := c.fill(c.nav, row); err != nil {
		return c.position, err
	}
	c.fireSectionRendering(section, c.nav)
	return c.layoutAndAppend(list, section, row)
}

// ConvertGroupHeader converts a group header row for the current group.
func (c *Converter) ConvertGroupHeader(list *ExportCollection, section *Section, header *GroupedRow) (image.Point, error) {
	saved := header.Size
	defer func() { header.Size = saved }()

	if err := c.fill(c.nav, header); err != nil {
		return c.position, err
	}
	c.fireSectionRendering(section, c.nav)
	c.logger.Debug("group header", "page", c.page.Number, "group", c.nav.CurrentRow())
	c.GroupHeaderRendering.emit(GroupHeaderEvent{Row: header})
	return c.layoutAndAppend(list, section, header)
}

// ConvertGroupChildren converts a row nested under a group header against
// the current record of cursor. The row size is not restored.
func (c *Converter) ConvertGroupChildren(list *ExportCollection, section *Section, row Container, cursor DataNavigator) (image.Point, error) {
	if cursor == nil {
		return c.position, ErrNilNavigator
	}
	if err := c.fill(cursor, row); err != nil {
		return c.position, err
	}
	c.fireSectionRendering(section, cursor)
	if err := c.FireRowRendering(row, cursor.Current()); err != nil {
		return c.position, err
	}
	return c.layoutAndAppend(list, section, row)
}

// ConvertGroupFooter converts the first GroupFooter among the children of
// container. Without one it does nothing.
func (c *Converter) ConvertGroupFooter(section *Section, container Container, list *ExportCollection) error {
	footer, ok := firstOf[*GroupFooter](container)
	if !ok {
		return nil
	}
	saved := footer.Size
	c.GroupFooterRendering.emit(GroupFooterEvent{Footer: footer})
	_, err := c.ConvertRow(list, section, footer)
	footer.Size = saved
	return err
}

// PageBreakAfterGroupChange forces a page break when the first GroupedRow
// of section asks for one and more records follow. It reports whether a
// break happened.
func (c *Converter) PageBreakAfterGroupChange(section *Section, list *ExportCollection) bool {
	header, ok := firstOf[*GroupedRow](section)
	if !ok || !header.PageBreakOnGroupChange {
		return false
	}
	if !c.nav.HasMoreData() {
		return false
	}
	c.ForcePageBreak(list, section)
	return true
}

// ForcePageBreak hands the current page to PageFull subscribers, resets
// the section offset to the body top, clears list and resets the position.
// Every page break goes through here.
func (c *Converter) ForcePageBreak(list *ExportCollection, section *Section) image.Point {
	c.logger.Debug("page break", "page", c.page.Number, "elements", list.Len())
	c.PageFull.emit(PageFullEvent{Page: c.page, Items: list.Items()})
	if section != nil {
		section.SectionOffset = c.page.Bounds.Detail.Min.Y
	}
	list.Clear()
	c.position = image.Point{}
	return c.position
}

// FireRowRendering notifies RowRendering subscribers. row must be a row.
func (c *Converter) FireRowRendering(row Container, rec Record) error {
	ri, ok := row.(RowItem)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotARow, row)
	}
	c.RowRendering.emit(RowRenderEvent{Row: ri.AsRow(), Record: rec})
	return nil
}

func (c *Converter) fill(nav DataNavigator, row Container) error {
	if err := nav.Fill(row.Children()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFill, row.Base().Name, err)
	}
	return nil
}

func (c *Converter) fireSectionRendering(section *Section, nav DataNavigator) {
	c.SectionRendering.emit(SectionRenderEvent{
		Section:    section,
		PageNumber: c.page.Number,
		CurrentRow: nav.CurrentRow(),
	})
}

// layoutAndAppend lays out row, flattens it at the current position,
// evaluates the new elements and advances the position by the laid-out
// height plus three gap units.
func (c *Converter) layoutAndAppend(list *ExportCollection, section *Section, row Container) (image.Point, error) {
	if err := c.layouter.LayoutRow(c.graphics, row); err != nil {
		return c.position, fmt.Errorf("%w: %s: %v", ErrLayout, row.Base().Name, err)
	}

	pos := c.origin()
	if c.breakOnOverflow && list.Len() > 0 && c.page.Bounds.IsPageFull(rowRect(pos, row.Base().Size)) {
		c.ForcePageBreak(list, section)
		pos = c.origin()
	}
	start := list.Len()
	list.Add(Flatten(row, pos, c.backColor)...)

	if c.evaluator != nil {
		if err := c.evaluator.Evaluate(list.tail(start)); err != nil {
			return c.position, fmt.Errorf("%w: %v", ErrEvaluation, err)
		}
	}

	height := row.Base().Size.Height
	c.position = image.Pt(c.page.Bounds.Detail.Min.X, pos.Y+height+3*c.gap)
	return c.position, nil
}

func rowRect(pos image.Point, size Size) image.Rectangle {
	return image.Rectangle{Min: pos, Max: pos.Add(image.Pt(size.Width, size.Height))}
}

// origin returns the current position, re-deriving the body top after a
// page break left it at the zero point.
func (c *Converter) origin() image.Point {
	if c.position == (image.Point{}) {
		c.position = c.page.Bounds.DetailStart()
	}
	return c.position
}
