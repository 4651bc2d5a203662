package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	reportflow "github.com/alnah/go-reportflow"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockReportRenderer struct {
	mu     sync.Mutex
	inputs []reportflow.Input
	result *reportflow.Result
	err    error
}

func (m *mockReportRenderer) Render(ctx context.Context, input reportflow.Input) (*reportflow.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockPool struct {
	renderer   *mockReportRenderer
	size       int
	acquireErr error
	mu         sync.Mutex
	acquired   int
	released   int
	closed     bool
}

func (m *mockPool) Acquire() (ReportRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	m.acquired++
	return m.renderer, nil
}

func (m *mockPool) Release(ReportRenderer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
}

func (m *mockPool) Size() int { return m.size }

func (m *mockPool) Close() error {
	m.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)

// testEnv returns an Environment with captured output, an empty process
// environment, and the real renderer pool.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Environment{
		Now:        func() time.Time { return fixedNow },
		Stdout:     stdout,
		Stderr:     stderr,
		Getenv:     func(string) string { return "" },
		Environ:    func() []string { return nil },
		IsTerminal: func(io.Writer) bool { return false },
		NewPool:    newRendererPool,
	}, stdout, stderr
}

const testTemplate = `name: Sales
parameters:
  title: Quarterly sales
groupBy: region
pageHeader:
  rows:
    - height: 20
      items:
        - {text: "=Param('title')", width: 300, height: 20}
detail:
  rows:
    - kind: groupHeader
      height: 18
      items:
        - {kind: field, column: region, width: 200, height: 18}
    - height: 14
      items:
        - {kind: field, column: product, width: 200, height: 14}
        - {kind: field, column: qty, x: 210, width: 80, height: 14}
    - kind: groupFooter
      height: 16
      items:
        - {text: "=Sum('qty')", width: 80, height: 16}
`

const testCSV = "region,product,qty\nWest,Pears,7\nEast,Apples,2\nEast,Plums,3\n"

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// testParams returns batch parameters for testTemplate.
func testParams(t *testing.T, format reportflow.OutputFormat) *renderParams {
	t.Helper()
	return &renderParams{
		templatePath: "sales.yaml",
		template:     []byte(testTemplate),
		format:       format,
		now:          func() time.Time { return fixedNow },
		logger:       newLogger(io.Discard, false, false),
	}
}
