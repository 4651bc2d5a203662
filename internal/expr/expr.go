// Package expr evaluates report expressions with an embedded JavaScript
// runtime (goja).
//
// An expression sees these globals:
//
//	Fields         the current record (Fields.amount, Fields["unit price"])
//	PageNumber     the page being laid out
//	Sum(col)       total of col over the current scope (group or report)
//	Avg(col)       mean of col over the current scope
//	Min(col), Max(col)
//	Count()        number of records in the current scope
//	Total(col)     total of col over every record
//	Param(name)    report parameter
//	Today(format?) current date, formatted with dateutil tokens
//	FormatDate(value, format)
//	FormatNumber(n, decimals)
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dop251/goja"

	"github.com/alnah/go-reportflow/internal/datasource"
	"github.com/alnah/go-reportflow/internal/dateutil"
)

// Sentinel errors for expression failures.
var (
	ErrSyntax  = errors.New("syntax error")
	ErrRuntime = errors.New("runtime error")
)

// Scope supplies the data an expression runs against.
type Scope interface {
	Current() map[string]any
	ScopeRecords() []map[string]any
	AllRecords() []map[string]any
	PageNumber() int
	Parameters() map[string]string
}

// Engine owns one goja runtime. It is not safe for concurrent use.
type Engine struct {
	vm       *goja.Runtime
	scope    Scope
	now      func() time.Time
	programs map[string]*goja.Program
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine bound to scope.
func New(scope Scope, opts ...Option) *Engine {
	e := &Engine{
		vm:       goja.New(),
		scope:    scope,
		now:      time.Now,
		programs: make(map[string]*goja.Program),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.register(); err != nil {
		panic(fmt.Sprintf("expr: registering builtins: %v", err))
	}
	return e
}

// builtins lists the functions every Engine defines.
var builtins = []string{"Sum", "Total", "Avg", "Min", "Max", "Count", "Param", "Today", "FormatNumber", "FormatDate"}

func (e *Engine) register() error {
	vm := e.vm
	var errs []error
	set := func(name string, fn any) {
		if err := vm.Set(name, fn); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	set("Sum", func(col string) float64 {
		s, _ := aggregate(e.scope.ScopeRecords(), col)
		return s
	})
	set("Total", func(col string) float64 {
		s, _ := aggregate(e.scope.AllRecords(), col)
		return s
	})
	set("Avg", func(col string) float64 {
		s, n := aggregate(e.scope.ScopeRecords(), col)
		if n == 0 {
			return 0
		}
		return s / float64(n)
	})
	set("Min", func(col string) any { return extreme(e.scope.ScopeRecords(), col, -1) })
	set("Max", func(col string) any { return extreme(e.scope.ScopeRecords(), col, 1) })
	set("Count", func() int { return len(e.scope.ScopeRecords()) })
	set("Param", func(name string) string { return e.scope.Parameters()[name] })
	set("Today", func(call goja.FunctionCall) goja.Value {
		format := ""
		if len(call.Arguments) > 0 {
			format = call.Argument(0).String()
		}
		s, err := dateutil.Format(e.now(), format)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(s)
	})
	set("FormatNumber", func(n float64, decimals int) string {
		return strconv.FormatFloat(n, 'f', decimals, 64)
	})
	set("FormatDate", func(value, format string) goja.Value {
		t, err := parseDate(value)
		if err == nil {
			var s string
			if s, err = dateutil.Format(t, format); err == nil {
				return vm.ToValue(s)
			}
		}
		panic(vm.NewGoError(err))
	})
	return errors.Join(errs...)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", time.DateOnly}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Eval runs source against the current scope and returns its string form.
// undefined and null render as the empty string.
func (e *Engine) Eval(source string) (string, error) {
	prg, err := e.compile(source)
	if err != nil {
		return "", err
	}

	fields := e.scope.Current()
	if fields == nil {
		fields = map[string]any{}
	}
	if err := e.vm.Set("Fields", fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	if err := e.vm.Set("PageNumber", e.scope.PageNumber()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRuntime, err)
	}

	v, err := e.vm.RunProgram(prg)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrRuntime, source, err)
	}
	return stringify(v), nil
}

func (e *Engine) compile(source string) (*goja.Program, error) {
	if prg, ok := e.programs[source]; ok {
		return prg, nil
	}
	prg, err := goja.Compile("expr", source, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, source, err)
	}
	e.programs[source] = prg
	return prg, nil
}

func stringify(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	switch x := v.Export().(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v.String()
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return v.String()
	}
}

func aggregate(records []map[string]any, col string) (sum float64, n int) {
	for _, rec := range records {
		if f, ok := datasource.Number(rec[col]); ok {
			sum += f
			n++
		}
	}
	return sum, n
}

// extreme returns the smallest (dir < 0) or largest (dir > 0) value of col.
func extreme(records []map[string]any, col string, dir int) any {
	var best any
	for _, rec := range records {
		v, ok := rec[col]
		if !ok || v == nil {
			continue
		}
		if best == nil || datasource.Compare(v, best)*dir > 0 {
			best = v
		}
	}
	return best
}
