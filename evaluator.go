package reportflow

import (
	"fmt"

	"github.com/alnah/go-reportflow/internal/expr"
)

// Compile-time interface checks.
var (
	_ Evaluator  = (*ExpressionEvaluator)(nil)
	_ pageBinder = (*ExpressionEvaluator)(nil)
	_ expr.Scope = (*evalScope)(nil)
)

// ExpressionEvaluator resolves "=expr" text items with the expr engine.
// Aggregates see the records of whichever navigator filled the row last:
// the whole report, or the current group.
type ExpressionEvaluator struct {
	engine *expr.Engine
	scope  *evalScope
}

// evalScope adapts the navigator and page to expr.Scope.
type evalScope struct {
	nav    *Navigator
	page   *Page
	params map[string]string
}

func (s *evalScope) Current() map[string]any        { return s.nav.Active().Current() }
func (s *evalScope) ScopeRecords() []map[string]any { return s.nav.Active().ScopeRecords() }
func (s *evalScope) AllRecords() []map[string]any   { return s.nav.AllRecords() }
func (s *evalScope) Parameters() map[string]string  { return s.params }

func (s *evalScope) PageNumber() int {
	if s.page == nil {
		return 0
	}
	return s.page.Number
}

// NewExpressionEvaluator returns an evaluator reading records from nav.
// The page is bound by the Converter it is given to.
func NewExpressionEvaluator(nav *Navigator, params map[string]string) *ExpressionEvaluator {
	return newExpressionEvaluator(nav, params)
}

func newExpressionEvaluator(nav *Navigator, params map[string]string, opts ...expr.Option) *ExpressionEvaluator {
	scope := &evalScope{nav: nav, params: params}
	return &ExpressionEvaluator{
		engine: expr.New(scope, opts...),
		scope:  scope,
	}
}

// BindPage sets the page PageNumber reads from.
func (e *ExpressionEvaluator) BindPage(p *Page) { e.scope.page = p }

// Evaluate resolves the expressions of elems and their children in place.
func (e *ExpressionEvaluator) Evaluate(elems []ExportElement) error {
	for _, el := range elems {
		switch v := el.(type) {
		case *ExportContainer:
			if err := e.Evaluate(v.Items); err != nil {
				return err
			}
		case *ExportText:
			if v.Expression == "" {
				continue
			}
			text, err := e.engine.Eval(v.Expression)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Name, err)
			}
			v.Text = text
		}
	}
	return nil
}
