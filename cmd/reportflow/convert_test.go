package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	reportflow "github.com/alnah/go-reportflow"
	"github.com/alnah/go-reportflow/internal/config"
)

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("flags override config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Template: "old.yaml",
			Output:   config.OutputConfig{Format: "html", DefaultDir: "reports"},
			Page:     config.PageConfig{Size: "letter", Margin: 1},
			Style:    config.StyleConfig{Name: "technical"},
			Workers:  2,
		}
		flags := &cliFlags{
			template: "new.yaml",
			output:   outputFlags{format: "pdf"},
			data:     dataFlags{groupBy: "region", sortBy: "product"},
			page:     pageFlags{size: "a4", orientation: "landscape", margin: 0.5},
			style:    styleFlags{style: "compact", css: "extra.css", assetPath: "assets"},
			font:     fontFlags{path: "Inter.ttf", size: 9},
			workers:  4,
		}

		mergeFlags(flags, cfg)

		want := &config.Config{
			Template: "new.yaml",
			Output:   config.OutputConfig{Format: "pdf", DefaultDir: "reports"},
			Page:     config.PageConfig{Size: "a4", Orientation: "landscape", Margin: 0.5},
			Style:    config.StyleConfig{Name: "compact", CSS: "extra.css"},
			Assets:   config.AssetsConfig{BasePath: "assets"},
			Font:     config.FontConfig{Path: "Inter.ttf", Size: 9},
			Data:     config.DataConfig{GroupBy: "region", SortBy: "product"},
			Workers:  4,
		}
		if cfg.Template != want.Template || cfg.Output != want.Output || cfg.Page != want.Page ||
			cfg.Style != want.Style || cfg.Assets != want.Assets || cfg.Font != want.Font ||
			cfg.Data != want.Data || cfg.Workers != want.Workers {
			t.Errorf("mergeFlags() = %+v, want %+v", cfg, want)
		}
	})

	t.Run("empty flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Template: "sales.yaml", Page: config.PageConfig{Margin: 1}, Workers: 2}
		mergeFlags(&cliFlags{}, cfg)

		if cfg.Template != "sales.yaml" || cfg.Page.Margin != 1 || cfg.Workers != 2 {
			t.Errorf("config changed: %+v", cfg)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveTimeout - Flag over config
// ---------------------------------------------------------------------------

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flag    string
		cfg     time.Duration
		want    time.Duration
		wantErr bool
	}{
		{name: "unset", want: 0},
		{name: "config", cfg: time.Minute, want: time.Minute},
		{name: "flag wins", flag: "45s", cfg: time.Minute, want: 45 * time.Second},
		{name: "malformed", flag: "soon", wantErr: true},
		{name: "zero", flag: "0s", wantErr: true},
		{name: "negative", flag: "-5s", wantErr: true},
		{name: "too long", flag: "1h", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeout(tt.flag, &config.Config{Timeout: config.Duration(tt.cfg)})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeout) {
					t.Errorf("resolveTimeout(%q) error = %v, want ErrInvalidTimeout", tt.flag, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveTimeout(%q) unexpected error: %v", tt.flag, err)
			}
			if got != tt.want {
				t.Errorf("resolveTimeout(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseParams - key=value pairs
// ---------------------------------------------------------------------------

func TestParseParams(t *testing.T) {
	t.Parallel()

	got, err := parseParams([]string{"title=Q1 sales", " region =East", "empty=", "expr=a=b"})
	if err != nil {
		t.Fatalf("parseParams() unexpected error: %v", err)
	}
	want := map[string]string{"title": "Q1 sales", "region": "East", "empty": "", "expr": "a=b"}
	if len(got) != len(want) {
		t.Fatalf("parseParams() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("params[%q] = %q, want %q", k, got[k], v)
		}
	}

	for _, bad := range []string{"title", "=value", " =x"} {
		if _, err := parseParams([]string{bad}); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("parseParams(%q) error = %v, want ErrInvalidParam", bad, err)
		}
	}
}

func TestMergeParams(t *testing.T) {
	t.Parallel()

	base := map[string]string{"title": "Config", "date": "auto"}
	got := mergeParams(base, map[string]string{"title": "Flag"})

	if got["title"] != "Flag" || got["date"] != "auto" {
		t.Errorf("mergeParams() = %v", got)
	}
	if base["title"] != "Config" {
		t.Error("mergeParams() should not modify the base map")
	}
}

// ---------------------------------------------------------------------------
// TestValidateWorkers
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, reportflow.MaxPoolSize} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) unexpected error: %v", n, err)
		}
	}
	for _, n := range []int{-1, reportflow.MaxPoolSize + 1} {
		if err := validateWorkers(n); !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", n, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPageSettings - Config page over template page
// ---------------------------------------------------------------------------

func TestPageSettings(t *testing.T) {
	t.Parallel()

	a4Landscape := &reportflow.PageSettings{Size: reportflow.PageSizeA4, Orientation: reportflow.OrientationLandscape, Margin: 1}

	tests := []struct {
		name    string
		base    *reportflow.PageSettings
		pc      config.PageConfig
		want    *reportflow.PageSettings
		wantErr error
	}{
		{name: "nothing configured", base: a4Landscape, want: nil},
		{
			name: "size over template",
			base: a4Landscape,
			pc:   config.PageConfig{Size: "legal"},
			want: &reportflow.PageSettings{Size: "legal", Orientation: reportflow.OrientationLandscape, Margin: 1},
		},
		{
			name: "margin over defaults",
			pc:   config.PageConfig{Margin: 0.75},
			want: &reportflow.PageSettings{Size: reportflow.PageSizeLetter, Orientation: reportflow.OrientationPortrait, Margin: 0.75},
		},
		{name: "invalid size", pc: config.PageConfig{Size: "tabloid"}, wantErr: reportflow.ErrInvalidPageSize},
		{name: "invalid margin", pc: config.PageConfig{Margin: 5}, wantErr: reportflow.ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := pageSettings(tt.base, tt.pc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("pageSettings() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("pageSettings() unexpected error: %v", err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("pageSettings() = %+v, want %+v", got, tt.want)
			}
			if tt.base != nil && tt.base.Size != reportflow.PageSizeA4 {
				t.Error("pageSettings() should not modify the template page")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRendererOptions / TestNewLogger
// ---------------------------------------------------------------------------

func TestRendererOptions(t *testing.T) {
	t.Parallel()

	logger := newLogger(io.Discard, false, false)

	if got := rendererOptions(&config.Config{}, 0, logger); len(got) != 1 {
		t.Errorf("defaults: %d options, want 1 (logger)", len(got))
	}

	cfg := &config.Config{
		Style:  config.StyleConfig{Name: "compact"},
		Assets: config.AssetsConfig{BasePath: "assets"},
		Font:   config.FontConfig{Path: "Inter.ttf", Size: 9},
	}
	if got := rendererOptions(cfg, time.Minute, logger); len(got) != 5 {
		t.Errorf("full config: %d options, want 5", len(got))
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		debug, info    bool
	}{
		{name: "default", debug: false, info: true},
		{name: "verbose", verbose: true, debug: true, info: true},
		{name: "quiet", quiet: true, debug: false, info: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := newLogger(io.Discard, tt.quiet, tt.verbose)
			ctx := context.Background()
			if got := l.Enabled(ctx, slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if got := l.Enabled(ctx, slog.LevelInfo); got != tt.info {
				t.Errorf("info enabled = %v, want %v", got, tt.info)
			}
			if !l.Enabled(ctx, slog.LevelWarn) {
				t.Error("warnings should always be enabled")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveJobs - Output paths
// ---------------------------------------------------------------------------

func TestResolveJobs(t *testing.T) {
	t.Parallel()

	data := filepath.Join("data", "east.csv")
	other := filepath.Join("data", "west.csv")

	tests := []struct {
		name       string
		dataPaths  []string
		output     string
		defaultDir string
		format     reportflow.OutputFormat
		want       []string
		wantErr    error
	}{
		{name: "beside data", dataPaths: []string{data}, format: reportflow.OutputHTML, want: []string{filepath.Join("data", "east.html")}},
		{name: "default dir", dataPaths: []string{data}, defaultDir: "reports", format: reportflow.OutputPDF, want: []string{filepath.Join("reports", "east.pdf")}},
		{name: "explicit file", dataPaths: []string{data}, output: "q1.pdf", format: reportflow.OutputPDF, want: []string{"q1.pdf"}},
		{
			name:      "output dir for many",
			dataPaths: []string{data, other},
			output:    "out",
			format:    reportflow.OutputYAML,
			want:      []string{filepath.Join("out", "east.yaml"), filepath.Join("out", "west.yaml")},
		},
		{name: "stdout", dataPaths: []string{data}, output: "-", format: reportflow.OutputHTML, want: []string{"-"}},
		{name: "stdout with two files", dataPaths: []string{data, other}, output: "-", format: reportflow.OutputHTML, wantErr: ErrStdoutOutput},
		{name: "stdout png", dataPaths: []string{data}, output: "-", format: reportflow.OutputPNG, wantErr: ErrStdoutOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jobs, err := resolveJobs(tt.dataPaths, tt.output, tt.defaultDir, tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("resolveJobs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveJobs() unexpected error: %v", err)
			}
			if len(jobs) != len(tt.want) {
				t.Fatalf("resolveJobs() = %d jobs, want %d", len(jobs), len(tt.want))
			}
			for i, job := range jobs {
				if job.DataPath != tt.dataPaths[i] || job.OutputPath != tt.want[i] {
					t.Errorf("job %d = %+v, want output %q", i, job, tt.want[i])
				}
			}
		})
	}
}
