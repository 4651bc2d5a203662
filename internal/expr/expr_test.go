package expr

import (
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type fakeScope struct {
	current map[string]any
	scope   []map[string]any
	all     []map[string]any
	page    int
	params  map[string]string
}

func (s *fakeScope) Current() map[string]any        { return s.current }
func (s *fakeScope) ScopeRecords() []map[string]any { return s.scope }
func (s *fakeScope) AllRecords() []map[string]any   { return s.all }
func (s *fakeScope) PageNumber() int                { return s.page }
func (s *fakeScope) Parameters() map[string]string  { return s.params }

func newTestScope() *fakeScope {
	group := []map[string]any{
		{"name": "a", "amount": int64(1)},
		{"name": "b", "amount": 2.0},
		{"name": "c", "amount": uint64(3)},
	}
	all := append([]map[string]any{{"name": "z", "amount": int64(10)}}, group...)
	return &fakeScope{
		current: group[0],
		scope:   group,
		all:     all,
		page:    2,
		params:  map[string]string{"title": "Sales"},
	}
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 7, 9, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// TestEval
// ---------------------------------------------------------------------------

func TestEval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "field access", source: "Fields.name", want: "a"},
		{name: "field arithmetic", source: "Fields.amount * 21", want: "21"},
		{name: "missing field", source: "Fields.nope", want: ""},
		{name: "null", source: "null", want: ""},
		{name: "page number", source: "'Page ' + PageNumber", want: "Page 2"},
		{name: "sum", source: "Sum('amount')", want: "6"},
		{name: "avg", source: "Avg('amount')", want: "2"},
		{name: "avg of missing column", source: "Avg('nope')", want: "0"},
		{name: "count", source: "Count()", want: "3"},
		{name: "total", source: "Total('amount')", want: "16"},
		{name: "min", source: "Min('amount')", want: "1"},
		{name: "max", source: "Max('name')", want: "c"},
		{name: "param", source: "Param('title')", want: "Sales"},
		{name: "unknown param", source: "Param('other')", want: ""},
		{name: "today", source: "Today()", want: "2026-03-07"},
		{name: "today with format", source: "Today('DD/MM/YYYY')", want: "07/03/2026"},
		{name: "format date", source: "FormatDate('2026-01-15', 'long')", want: "January 15, 2026"},
		{name: "format number", source: "FormatNumber(3.14159, 2)", want: "3.14"},
		{name: "fraction", source: "1 / 4", want: "0.25"},
		{name: "boolean", source: "Count() > 2", want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := New(newTestScope(), WithClock(fixedClock))
			got, err := e.Eval(tt.source)
			if err != nil {
				t.Fatalf("Eval(%q) unexpected error: %v", tt.source, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		source  string
		wantErr error
	}{
		{name: "syntax error", source: "1 +", wantErr: ErrSyntax},
		{name: "reference error", source: "undefinedFunction()", wantErr: ErrRuntime},
		{name: "bad date", source: "FormatDate('yesterday', 'iso')", wantErr: ErrRuntime},
		{name: "bad format", source: "Today('[unclosed')", wantErr: ErrRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := New(newTestScope(), WithClock(fixedClock))
			_, err := e.Eval(tt.source)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Eval(%q) error = %v, want %v", tt.source, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEval_FollowsScope - the same program sees the scope at call time
// ---------------------------------------------------------------------------

func TestEval_FollowsScope(t *testing.T) {
	t.Parallel()

	scope := newTestScope()
	e := New(scope)

	for i, rec := range scope.scope {
		scope.current = rec
		got, err := e.Eval("Fields.name")
		if err != nil {
			t.Fatalf("Eval() unexpected error: %v", err)
		}
		if want := rec["name"].(string); got != want {
			t.Errorf("record %d: Eval() = %q, want %q", i, got, want)
		}
	}

	scope.scope = scope.scope[:1]
	got, err := e.Eval("Count()")
	if err != nil {
		t.Fatalf("Eval() unexpected error: %v", err)
	}
	if got != "1" {
		t.Errorf("Count() after narrowing scope = %q, want 1", got)
	}
}

func TestEval_NilCurrent(t *testing.T) {
	t.Parallel()

	e := New(&fakeScope{})
	got, err := e.Eval("Fields.x")
	if err != nil {
		t.Fatalf("Eval() unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Eval() = %q, want empty", got)
	}
}

func TestNew_DefinesBuiltins(t *testing.T) {
	t.Parallel()

	e := New(&fakeScope{})
	for _, name := range builtins {
		if v := e.vm.Get(name); v == nil {
			t.Errorf("builtin %s is not defined", name)
		}
	}
}
