package reportflow

import (
	"image"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func newTestDetail(t *testing.T, nav DataNavigator, opts ...ConverterOption) *DetailConverter {
	t.Helper()
	opts = append([]ConverterOption{WithGraphics(fakeGraphics{}), WithRowGap(0)}, opts...)
	d, err := NewDetailConverter(nav, testPage(), &mockLayouter{}, opts...)
	if err != nil {
		t.Fatalf("NewDetailConverter() unexpected error: %v", err)
	}
	return d
}

// newLayoutDetail uses the real TextLayouter so rows grow with their text.
func newLayoutDetail(t *testing.T, nav DataNavigator) *DetailConverter {
	t.Helper()
	d, err := NewDetailConverter(nav, testPage(), NewTextLayouter(), WithGraphics(fakeGraphics{}), WithRowGap(0))
	if err != nil {
		t.Fatalf("NewDetailConverter() unexpected error: %v", err)
	}
	return d
}

// growRow is a row with one 60pt wide CanGrow field: ten runes per line.
func growRow(name string, height int, column string) *Row {
	return &Row{
		BaseItem: BaseItem{Name: name, Size: Size{Width: 500, Height: height}},
		Items: []Item{&DataItem{
			TextItem: TextItem{BaseItem: BaseItem{Name: column, Size: Size{Width: 60, Height: height}}, CanGrow: true},
			Column:   column,
		}},
	}
}

func names(elems []ExportElement) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.Base().Name
	}
	return out
}

// ---------------------------------------------------------------------------
// TestNewDetailConverter
// ---------------------------------------------------------------------------

func TestNewDetailConverter_NilNavigator(t *testing.T) {
	t.Parallel()

	if _, err := NewDetailConverter(nil, testPage(), &mockLayouter{}); err == nil {
		t.Error("NewDetailConverter(nil) expected error")
	}
}

// ---------------------------------------------------------------------------
// TestConvertSection - Page breaking
// ---------------------------------------------------------------------------

func TestConvertSection_ThreeTallRowsBreakOnce(t *testing.T) {
	t.Parallel()

	nav := newMockNavigator(records(3)...)
	d := newTestDetail(t, nav)
	var flushed [][]ExportElement
	d.PageFull.Subscribe(func(ev PageFullEvent) { flushed = append(flushed, ev.Items) })

	section := &Section{Items: []Item{dataRow("detail", 200, "id")}}
	list := NewExportCollection()
	if err := d.ConvertSection(list, section); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}

	if len(flushed) != 1 {
		t.Fatalf("PageFull fired %d times, want 1", len(flushed))
	}
	if len(flushed[0]) != 2 {
		t.Errorf("first page holds %d rows, want 2", len(flushed[0]))
	}
	if list.Len() != 1 {
		t.Fatalf("pending rows = %d, want 1", list.Len())
	}
	third := containerAt(t, list.Items(), 0)
	if third.Location != testBounds().DetailStart() {
		t.Errorf("third row at %v, want body top %v", third.Location, testBounds().DetailStart())
	}
	if text := third.Items[0].(*ExportText).Text; text != "3" {
		t.Errorf("third row text = %q, want 3", text)
	}
}

func TestConvertSection_RowsThatFitNeverBreak(t *testing.T) {
	t.Parallel()

	nav := newMockNavigator(records(4)...)
	d := newTestDetail(t, nav)
	breaks := 0
	d.PageFull.Subscribe(func(PageFullEvent) { breaks++ })

	list := NewExportCollection()
	if err := d.ConvertSection(list, &Section{Items: []Item{dataRow("detail", 100, "id")}}); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	if breaks != 0 {
		t.Errorf("PageFull fired %d times, want 0", breaks)
	}
	if list.Len() != 4 {
		t.Errorf("collection len = %d, want 4", list.Len())
	}
}

func TestConvertSection_PositionsPerPage(t *testing.T) {
	t.Parallel()

	nav := newMockNavigator(records(12)...)
	d := newTestDetail(t, nav)
	var pages [][]ExportElement
	d.PageFull.Subscribe(func(ev PageFullEvent) { pages = append(pages, ev.Items) })

	list := NewExportCollection()
	if err := d.ConvertSection(list, &Section{Items: []Item{dataRow("detail", 100, "id")}}); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	pages = append(pages, list.Items())

	body := testBounds().Detail
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	for p, items := range pages {
		prev := -1
		for i, el := range items {
			loc := el.Base().Location
			if i == 0 && loc.Y != body.Min.Y {
				t.Errorf("page %d starts at y=%d, want %d", p+1, loc.Y, body.Min.Y)
			}
			if loc.Y <= prev {
				t.Errorf("page %d row %d at y=%d, not below %d", p+1, i, loc.Y, prev)
			}
			if loc.X != body.Min.X {
				t.Errorf("page %d row %d at x=%d, want %d", p+1, i, loc.X, body.Min.X)
			}
			if el.Base().Bounds().Max.Y > body.Max.Y {
				t.Errorf("page %d row %d ends at %d, past the body", p+1, i, el.Base().Bounds().Max.Y)
			}
			prev = loc.Y
		}
	}
}

func TestConvertSection_OversizeRowTakesEmptyPage(t *testing.T) {
	t.Parallel()

	nav := newMockNavigator(records(2)...)
	d := newTestDetail(t, nav)
	var flushed [][]ExportElement
	d.PageFull.Subscribe(func(ev PageFullEvent) { flushed = append(flushed, ev.Items) })

	list := NewExportCollection()
	if err := d.ConvertSection(list, &Section{Items: []Item{dataRow("huge", 600, "id")}}); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	if len(flushed) != 1 || len(flushed[0]) != 1 {
		t.Fatalf("flushed pages = %v, want one page with one row", flushed)
	}
	if list.Len() != 1 {
		t.Errorf("pending rows = %d, want 1", list.Len())
	}
}

func TestConvertSection_SectionOffsetResetsOnBreak(t *testing.T) {
	t.Parallel()

	nav := newMockNavigator(records(3)...)
	d := newTestDetail(t, nav)
	section := &Section{Items: []Item{dataRow("detail", 200, "id")}, SectionOffset: 999}

	if err := d.ConvertSection(NewExportCollection(), section); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	if section.SectionOffset != testBounds().Detail.Min.Y {
		t.Errorf("SectionOffset = %d, want body top %d", section.SectionOffset, testBounds().Detail.Min.Y)
	}
}

// ---------------------------------------------------------------------------
// TestConvertSection - Grouping
// ---------------------------------------------------------------------------

func salesRecords() []Record {
	return []Record{
		{"region": "West", "product": "Pears", "qty": 7},
		{"region": "East", "product": "Apples", "qty": 2},
		{"region": "East", "product": "Plums", "qty": 3},
	}
}

func groupedSection(pageBreak bool) *Section {
	return &Section{Items: []Item{
		&GroupedRow{Row: *dataRow("header", 20, "region"), PageBreakOnGroupChange: pageBreak},
		dataRow("detail", 20, "product"),
		&GroupFooter{Row: *dataRow("footer", 20)},
	}}
}

func TestConvertSection_Grouped(t *testing.T) {
	t.Parallel()

	nav := NewNavigator(salesRecords(), "region", "")
	d := newTestDetail(t, nav)
	var headers []string
	d.GroupHeaderRendering.Subscribe(func(ev GroupHeaderEvent) {
		headers = append(headers, ev.Row.Items[0].(*DataItem).Text)
	})

	list := NewExportCollection()
	if err := d.ConvertSection(list, groupedSection(false)); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}

	want := []string{"header", "detail", "detail", "footer", "header", "detail", "footer"}
	if got := names(list.Items()); !slices.Equal(got, want) {
		t.Errorf("element order = %v, want %v", got, want)
	}
	if !slices.Equal(headers, []string{"East", "West"}) {
		t.Errorf("group headers = %v, want [East West]", headers)
	}

	var products []string
	for _, el := range list.Items() {
		if c := el.(*ExportContainer); c.Name == "detail" {
			products = append(products, c.Items[0].(*ExportText).Text)
		}
	}
	if !slices.Equal(products, []string{"Apples", "Plums", "Pears"}) {
		t.Errorf("products = %v, want group order", products)
	}
}

func TestConvertSection_GroupPageBreak(t *testing.T) {
	t.Parallel()

	nav := NewNavigator(salesRecords(), "region", "")
	d := newTestDetail(t, nav)
	var flushed [][]ExportElement
	d.PageFull.Subscribe(func(ev PageFullEvent) { flushed = append(flushed, ev.Items) })

	list := NewExportCollection()
	if err := d.ConvertSection(list, groupedSection(true)); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}

	if len(flushed) != 1 {
		t.Fatalf("PageFull fired %d times, want 1 (no break after the last group)", len(flushed))
	}
	if got := names(flushed[0]); !slices.Equal(got, []string{"header", "detail", "detail", "footer"}) {
		t.Errorf("first page = %v, want the East group", got)
	}
	if got := names(list.Items()); !slices.Equal(got, []string{"header", "detail", "footer"}) {
		t.Errorf("pending = %v, want the West group", got)
	}
	if loc := list.Items()[0].Base().Location; loc != testBounds().DetailStart() {
		t.Errorf("second group starts at %v, want body top", loc)
	}
}

func TestConvertSection_GroupedTemplateUngroupedData(t *testing.T) {
	t.Parallel()

	nav := NewNavigator(salesRecords(), "", "product")
	d := newTestDetail(t, nav)

	list := NewExportCollection()
	if err := d.ConvertSection(list, groupedSection(true)); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	if got := names(list.Items()); !slices.Equal(got, []string{"detail", "detail", "detail"}) {
		t.Errorf("elements = %v, want only detail rows", got)
	}
}

func TestConvertSection_EmptyData(t *testing.T) {
	t.Parallel()

	d := newTestDetail(t, NewNavigator(nil, "region", ""))
	list := NewExportCollection()
	if err := d.ConvertSection(list, groupedSection(false)); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("collection len = %d, want 0", list.Len())
	}
}

func TestConvertSection_GroupedNavigatorWithoutHeader(t *testing.T) {
	t.Parallel()

	d := newTestDetail(t, NewNavigator(salesRecords(), "region", ""))
	list := NewExportCollection()
	if err := d.ConvertSection(list, &Section{Items: []Item{dataRow("detail", 20, "product")}}); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}

	var products []string
	for _, el := range list.Items() {
		products = append(products, el.(*ExportContainer).Items[0].(*ExportText).Text)
	}
	if !slices.Equal(products, []string{"Apples", "Plums", "Pears"}) {
		t.Errorf("products = %v, want one row per record in group order", products)
	}
}

// ---------------------------------------------------------------------------
// TestConvertSection - Grown rows with the text layouter
// ---------------------------------------------------------------------------

func TestConvertSection_GroupChildrenDoNotDrift(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{"g": "a", "v": strings.Repeat("x", 100)},
		{"g": "a", "v": "short"},
	}
	d := newLayoutDetail(t, NewNavigator(recs, "g", ""))
	section := &Section{Items: []Item{
		&GroupedRow{Row: *dataRow("header", 20, "g")},
		growRow("detail", 20, "v"),
	}}

	list := NewExportCollection()
	if err := d.ConvertSection(list, section); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}

	var heights []int
	for _, el := range list.Items() {
		if el.Base().Name == "detail" {
			heights = append(heights, el.Base().Size.Height)
		}
	}
	// 100 runes wrap to 10 lines of 12pt.
	if !slices.Equal(heights, []int{120, 20}) {
		t.Errorf("detail heights = %v, want [120 20]", heights)
	}
}

func TestConvertSection_GrownRowNeverCrossesBody(t *testing.T) {
	t.Parallel()

	recs := make([]Record, 22)
	for i := range recs {
		recs[i] = Record{"v": strconv.Itoa(i + 1)}
	}
	recs[21]["v"] = strings.Repeat("x", 100)

	d := newLayoutDetail(t, NewNavigator(recs, "", ""))
	var pages [][]ExportElement
	d.PageFull.Subscribe(func(ev PageFullEvent) { pages = append(pages, ev.Items) })

	list := NewExportCollection()
	if err := d.ConvertSection(list, &Section{Items: []Item{growRow("detail", 20, "v")}}); err != nil {
		t.Fatalf("ConvertSection() unexpected error: %v", err)
	}
	pages = append(pages, list.Items())

	// 21 rows of 20pt fill 420pt; the last grows to 120pt and moves on.
	var perPage []int
	for _, items := range pages {
		perPage = append(perPage, len(items))
	}
	if !slices.Equal(perPage, []int{21, 1}) {
		t.Fatalf("rows per page = %v, want [21 1]", perPage)
	}
	body := testBounds().Detail
	for p, items := range pages {
		for i, el := range items {
			if b := el.Base().Bounds(); b.Max.Y > body.Max.Y {
				t.Errorf("page %d row %d ends at %d, past body bottom %d", p+1, i, b.Max.Y, body.Max.Y)
			}
		}
	}
	last := pages[1][0].Base()
	if last.Location.Y != body.Min.Y || last.Size.Height != 120 {
		t.Errorf("moved row at y=%d height %d, want y=%d height 120", last.Location.Y, last.Size.Height, body.Min.Y)
	}
}

// ---------------------------------------------------------------------------
// TestDetailConverter_Convert / ConvertRows
// ---------------------------------------------------------------------------

func TestDetailConverter_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		item    Item
		wantLen int
	}{
		{name: "section converts every record", item: &Section{Items: []Item{dataRow("detail", 20, "id")}}, wantLen: 2},
		{name: "non-section yields nothing", item: dataRow("row", 20, "id"), wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := newTestDetail(t, newMockNavigator(records(2)...))
			list, err := d.Convert(&Section{}, tt.item)
			if err != nil {
				t.Fatalf("Convert() unexpected error: %v", err)
			}
			if list.Len() != tt.wantLen {
				t.Errorf("Convert() len = %d, want %d", list.Len(), tt.wantLen)
			}
		})
	}
}

func TestConvertRows_StaticSection(t *testing.T) {
	t.Parallel()

	nav := newMockNavigator(records(5)...)
	d := newTestDetail(t, nav)
	header := &Section{Items: []Item{
		&Row{BaseItem: BaseItem{Name: "title", Size: Size{Width: 500, Height: 30}}},
		&Row{BaseItem: BaseItem{Name: "subtitle", Size: Size{Width: 500, Height: 20}}},
	}}

	list := NewExportCollection()
	if err := d.ConvertRows(list, header); err != nil {
		t.Fatalf("ConvertRows() unexpected error: %v", err)
	}
	if got := names(list.Items()); !slices.Equal(got, []string{"title", "subtitle"}) {
		t.Errorf("elements = %v, want [title subtitle]", got)
	}
	if header.SectionOffset != testBounds().Detail.Min.Y {
		t.Errorf("SectionOffset = %d, want %d", header.SectionOffset, testBounds().Detail.Min.Y)
	}
	if want := image.Pt(testBounds().Detail.Min.X, testBounds().Detail.Min.Y+50); d.CurrentPosition() != want {
		t.Errorf("CurrentPosition() = %v, want %v", d.CurrentPosition(), want)
	}
}

func TestDetailRows(t *testing.T) {
	t.Parallel()

	section := groupedSection(false)
	section.Items = append(section.Items, &TextItem{}, dataRow("second", 10))

	got := detailRows(section)
	if len(got) != 2 || got[0].Base().Name != "detail" || got[1].Base().Name != "second" {
		t.Errorf("detailRows() = %v", got)
	}
}
