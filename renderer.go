package reportflow

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-reportflow/internal/assets"
	"github.com/alnah/go-reportflow/internal/dateutil"
	"github.com/alnah/go-reportflow/internal/fileutil"
	"github.com/alnah/go-reportflow/internal/measure"
	"github.com/alnah/go-reportflow/internal/render"
)

// OutputFormat selects what Render produces.
type OutputFormat string

// Output formats.
const (
	OutputHTML OutputFormat = "html"
	OutputPDF  OutputFormat = "pdf"
	OutputPNG  OutputFormat = "png"
	OutputYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name. Empty selects OutputHTML.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "":
		return OutputHTML, nil
	case OutputHTML, OutputPDF, OutputPNG, OutputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (must be html, pdf, png or yaml)", ErrInvalidFormat, s)
	}
}

// Extension returns the file extension for the format.
func (f OutputFormat) Extension() string {
	if f == "" {
		return string(OutputHTML)
	}
	return string(f)
}

// Input is one report to render.
type Input struct {
	Report  *Report
	Records []Record
	Format  OutputFormat // OutputHTML when empty

	// CSS is appended after the renderer style.
	CSS string

	// GroupBy and SortBy override the report's columns when set.
	GroupBy string
	SortBy  string

	// Parameters are merged over the report's. "auto" and "auto:FORMAT"
	// values resolve to today's date.
	Parameters map[string]string

	// Page overrides the report's page settings when set.
	Page *PageSettings
}

// Result holds the laid-out pages and the payload for the requested
// format. Only one of HTML, PDF, PNG and YAML is set.
type Result struct {
	ID    string
	Pages []*ExportPage
	HTML  []byte
	PDF   []byte
	PNG   [][]byte // one image per page
	YAML  []byte
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeout       time.Duration
	styleInput    string
	resolvedStyle string
	assetPath     string
	font          measure.Font
	gap           int
	scale         float64
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the browser page-load timeout for PDF output.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("reportflow: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStyle sets the CSS for HTML and PDF output: a style name from the
// asset loader, a CSS file path, or CSS content.
func WithStyle(style string) Option {
	return func(r *Renderer) {
		r.cfg.styleInput = style
	}
}

// WithAssetPath adds a directory searched for styles before the embedded
// ones.
func WithAssetPath(path string) Option {
	return func(r *Renderer) {
		r.cfg.assetPath = path
	}
}

// WithFont sets the face used for layout metrics and PNG drawing. An
// empty path keeps the built-in face.
func WithFont(path string, size float64) Option {
	return func(r *Renderer) {
		r.cfg.font = measure.Font{Path: path, Size: size}
	}
}

// WithGap sets the gap unit between detail rows.
// Panics if gap < 0 (programmer error).
func WithGap(gap int) Option {
	if gap < 0 {
		panic("reportflow: WithGap gap must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.gap = gap
	}
}

// WithPNGScale sets pixels per point for PNG output.
func WithPNGScale(scale float64) Option {
	return func(r *Renderer) {
		r.cfg.scale = scale
	}
}

// WithPDFConverter replaces the headless Chrome backend.
func WithPDFConverter(c PDFConverter) Option {
	return func(r *Renderer) {
		r.pdf = c
	}
}

// Renderer binds report templates to records and renders the pages.
// Create with NewRenderer, use Render, and Close when done.
// A Renderer is not safe for concurrent use; see RendererPool.
type Renderer struct {
	cfg      rendererConfig
	logger   *slog.Logger
	styles   assets.StyleLoader
	html     *render.HTMLRenderer
	graphics Graphics
	pdf      PDFConverter
	now      func() time.Time
}

// NewRenderer creates a Renderer. Returns an error if the asset path,
// style or font cannot be loaded.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg:    rendererConfig{timeout: defaultTimeout, gap: DefaultRowGap, scale: render.DefaultScale},
		logger: slog.New(slog.DiscardHandler),
		styles: assets.NewEmbeddedLoader(),
		html:   render.NewHTMLRenderer(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(r.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		r.styles = resolver
	}

	if err := r.resolveStyle(); err != nil {
		return nil, err
	}

	dc, err := measure.NewMeasureContext(r.cfg.font)
	if err != nil {
		return nil, err
	}
	r.graphics = dc

	// Create PDF converter if not injected (e.g., by tests)
	if r.pdf == nil {
		r.pdf = newRodConverter(r.cfg.timeout)
	}

	return r, nil
}

// Render paginates the report and renders it in the requested format.
// The context is checked between stages; the layout itself is not
// interruptible. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (r *Renderer) Render(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	format, err := r.validateInput(input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := effectiveReport(input)
	params, err := r.resolveParameters(report.Parameters, input.Parameters)
	if err != nil {
		return nil, err
	}
	groupBy, sortBy := orderColumns(report, input)

	nav := NewNavigator(input.Records, groupBy, sortBy)
	pages, err := Paginate(report, nav,
		WithGraphics(r.graphics),
		WithEvaluator(NewExpressionEvaluator(nav, params)),
		WithRowGap(r.cfg.gap),
		WithConverterLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{ID: uuid.NewString(), Pages: pages}
	r.logger.Debug("report paginated",
		"report", report.Name, "id", res.ID, "records", len(input.Records), "pages", len(pages))

	dto := toRenderPages(pages)
	switch format {
	case OutputYAML:
		res.YAML, err = render.YAML(dto)
		if err != nil {
			return nil, fmt.Errorf("rendering YAML: %w", err)
		}
	case OutputPNG:
		res.PNG, err = render.PNG(ctx, dto, render.PNGOptions{Font: r.cfg.font, Scale: r.cfg.scale})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", ErrPNGRender, err)
		}
	case OutputHTML, OutputPDF:
		doc, err := r.html.Render(ctx, dto, render.HTMLOptions{
			Title:    report.Name,
			ReportID: res.ID,
			CSS:      r.documentCSS(input.CSS),
		})
		if err != nil {
			return nil, fmt.Errorf("rendering HTML: %w", err)
		}
		if format == OutputHTML {
			res.HTML = doc
			break
		}
		res.PDF, err = r.pdf.ToPDF(ctx, string(doc), pdfOptionsFor(pages))
		if err != nil {
			return nil, fmt.Errorf("converting to PDF: %w", err)
		}
	}

	return res, nil
}

// Close releases resources (headless Chrome browser).
func (r *Renderer) Close() error {
	if r.pdf != nil {
		return r.pdf.Close()
	}
	return nil
}

// Styles lists the style names WithStyle accepts.
func (r *Renderer) Styles() []string {
	return r.styles.Styles()
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. Without one, the default style is used.
func (r *Renderer) resolveStyle() error {
	input := r.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		r.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if fileutil.IsCSS(input) {
		r.cfg.resolvedStyle = input
		return nil
	}

	css, err := r.styles.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrStyleNotFound, input, err)
	}
	r.cfg.resolvedStyle = css
	return nil
}

// documentCSS puts the renderer style first so input CSS can override it.
func (r *Renderer) documentCSS(extra string) string {
	if extra == "" {
		return r.cfg.resolvedStyle
	}
	return r.cfg.resolvedStyle + "\n" + extra
}

// validateInput checks that required fields are present and valid.
//
// This is the trust boundary for library users who build Input manually.
// CLI users have their input validated earlier by Config.Validate() at
// config load time.
func (r *Renderer) validateInput(input Input) (OutputFormat, error) {
	if err := input.Report.Validate(); err != nil {
		return "", err
	}
	if err := input.Page.Validate(); err != nil {
		return "", err
	}
	return ParseOutputFormat(string(input.Format))
}

// resolveParameters merges input parameters over the report's and
// expands date values.
func (r *Renderer) resolveParameters(base, override map[string]string) (map[string]string, error) {
	params := make(map[string]string, len(base)+len(override))
	maps.Copy(params, base)
	maps.Copy(params, override)

	now := r.now()
	for k, v := range params {
		resolved, err := dateutil.Resolve(v, now)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		params[k] = resolved
	}
	return params, nil
}

// effectiveReport applies the input's page settings to a shallow copy of
// the report. Sections stay shared.
func effectiveReport(input Input) *Report {
	report := *input.Report
	if input.Page != nil {
		report.Page = input.Page
	}
	return &report
}

// orderColumns picks the grouping and sort columns. A grouping column
// without a group header in the detail only orders the records.
func orderColumns(report *Report, input Input) (groupBy, sortBy string) {
	groupBy, sortBy = report.GroupBy, report.SortBy
	if input.GroupBy != "" {
		groupBy = input.GroupBy
	}
	if input.SortBy != "" {
		sortBy = input.SortBy
	}
	if _, ok := firstOf[*GroupedRow](report.Detail); !ok && groupBy != "" {
		if sortBy == "" {
			sortBy = groupBy
		}
		groupBy = ""
	}
	return groupBy, sortBy
}

// pdfOptionsFor sizes the paper from the first page.
func pdfOptionsFor(pages []*ExportPage) *PDFOptions {
	if len(pages) == 0 {
		return nil
	}
	return &PDFOptions{
		PaperWidth:  float64(pages[0].Width) / PointsPerInch,
		PaperHeight: float64(pages[0].Height) / PointsPerInch,
	}
}

// toRenderPages converts export pages to renderer DTOs.
func toRenderPages(pages []*ExportPage) []render.Page {
	out := make([]render.Page, len(pages))
	for i, p := range pages {
		out[i] = render.Page{
			Number:   p.Number,
			Width:    p.Width,
			Height:   p.Height,
			Elements: toRenderElements(p.Items),
		}
	}
	return out
}

func toRenderElements(elems []ExportElement) []render.Element {
	if len(elems) == 0 {
		return nil
	}
	out := make([]render.Element, 0, len(elems))
	for _, e := range elems {
		b := e.Base()
		el := render.Element{
			Name:      b.Name,
			X:         b.Location.X,
			Y:         b.Location.Y,
			Width:     b.Size.Width,
			Height:    b.Size.Height,
			BackColor: b.BackColor,
			ForeColor: b.ForeColor,
		}
		switch v := e.(type) {
		case *ExportText:
			el.Kind = render.KindText
			el.Text = v.Text
			el.Expression = v.Expression
			el.Markdown = v.Format == FormatMarkdown
			el.Align = string(v.Align)
			el.FontSize = v.FontSize
		case *ExportContainer:
			el.Kind = render.KindBox
			el.Children = toRenderElements(v.Items)
		default:
			el.Kind = render.KindBox
		}
		out = append(out, el)
	}
	return out
}
