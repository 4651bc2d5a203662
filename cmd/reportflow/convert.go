package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"
	"time"

	reportflow "github.com/alnah/go-reportflow"
	"github.com/alnah/go-reportflow/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no data file specified")
	ErrNoTemplate         = errors.New("no report template specified")
	ErrReadTemplate       = errors.New("failed to read template file")
	ErrReadData           = errors.New("failed to read data file")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidParam       = errors.New("invalid parameter")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrStdoutOutput       = errors.New("stdout output needs exactly one data file and a single-document format")
	ErrTerminalOutput     = errors.New("refusing to write binary output to a terminal")
	ErrRenderFailed       = errors.New("report rendering failed")
)

// stdoutPath selects standard output as the destination.
const stdoutPath = "-"

// renderParams groups parameters shared across every report of a batch.
type renderParams struct {
	templatePath string
	template     []byte
	format       reportflow.OutputFormat
	css          string
	groupBy      string
	sortBy       string
	parameters   map[string]string
	page         config.PageConfig
	stdout       io.Writer // set when the single output goes to stdout
	now          func() time.Time
	logger       *slog.Logger
}

// runConvert orchestrates a batch: config, template, data files, pool, results.
func runConvert(ctx context.Context, dataPaths []string, flags *cliFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Environ(), env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := reportflow.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	timeout, err := resolveTimeout(flags.timeout, cfg)
	if err != nil {
		return err
	}
	params, err := parseParams(flags.params)
	if err != nil {
		return err
	}

	if cfg.Template == "" {
		return ErrNoTemplate
	}
	tmpl, err := os.ReadFile(cfg.Template) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadTemplate, err)
	}
	// Fail fast on a broken template instead of once per data file.
	if _, err := reportflow.ParseReport(tmpl); err != nil {
		return fmt.Errorf("parsing %s: %w", cfg.Template, err)
	}

	if len(dataPaths) == 0 {
		return ErrNoInput
	}
	jobs, err := resolveJobs(dataPaths, flags.output.path, cfg.Output.DefaultDir, format)
	if err != nil {
		return err
	}

	css, err := readCSS(cfg.Style.CSS)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	p := &renderParams{
		templatePath: cfg.Template,
		template:     tmpl,
		format:       format,
		css:          css,
		groupBy:      cfg.Data.GroupBy,
		sortBy:       cfg.Data.SortBy,
		parameters:   mergeParams(cfg.Params, params),
		page:         cfg.Page,
		now:          env.Now,
		logger:       logger,
	}

	out := env.Stdout
	if jobs[0].OutputPath == stdoutPath {
		if format == reportflow.OutputPDF && env.IsTerminal(env.Stdout) {
			return ErrTerminalOutput
		}
		p.stdout = env.Stdout
		out = env.Stderr
	}

	size := min(reportflow.ResolvePoolSize(cfg.Workers), len(jobs))
	logger.Debug("starting batch", "reports", len(jobs), "workers", size, "format", string(format))
	pool := env.NewPool(size, rendererOptions(cfg, timeout, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing renderers", "error", err)
		}
	}()

	results := renderBatch(ctx, pool, jobs, p)

	summary := printResults(results, flags.common.quiet, flags.common.verbose, out, env.Stderr)
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d report(s): %w", ErrRenderFailed, summary.Failed, len(results), firstError(results))
	}
	return nil
}

// loadConfig loads the config named by the flag, else by REPORTFLOW_CONFIG.
// Without either, the defaults are used.
func loadConfig(flagConfig string, envCfg *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.template != "" {
		cfg.Template = flags.template
	}
	if flags.output.format != "" {
		cfg.Output.Format = flags.output.format
	}

	// Data flags
	if flags.data.groupBy != "" {
		cfg.Data.GroupBy = flags.data.groupBy
	}
	if flags.data.sortBy != "" {
		cfg.Data.SortBy = flags.data.sortBy
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Style flags
	if flags.style.style != "" {
		cfg.Style.Name = flags.style.style
	}
	if flags.style.css != "" {
		cfg.Style.CSS = flags.style.css
	}
	if flags.style.assetPath != "" {
		cfg.Assets.BasePath = flags.style.assetPath
	}

	// Font flags
	if flags.font.path != "" {
		cfg.Font.Path = flags.font.path
	}
	if flags.font.size > 0 {
		cfg.Font.Size = flags.font.size
	}

	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
}

// resolveTimeout returns the PDF timeout: the flag, else the config
// (which already carries REPORTFLOW_TIMEOUT). Zero keeps the library default.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return time.Duration(cfg.Timeout), nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, flagValue)
	}
	if d > config.MaxTimeout {
		return 0, fmt.Errorf("%w: %q (maximum is %s)", ErrInvalidTimeout, flagValue, config.MaxTimeout)
	}
	return d, nil
}

// parseParams parses repeated key=value flags.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q (want key=value)", ErrInvalidParam, pair)
		}
		params[key] = value
	}
	return params, nil
}

// mergeParams returns config parameters overridden by flag parameters.
func mergeParams(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}

// readCSS reads the extra CSS file, if any.
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(content), nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > reportflow.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, reportflow.MaxPoolSize)
	}
	return nil
}

// rendererOptions builds the options every pooled renderer is created with.
func rendererOptions(cfg *config.Config, timeout time.Duration, logger *slog.Logger) []reportflow.Option {
	opts := []reportflow.Option{reportflow.WithLogger(logger)}
	if cfg.Style.Name != "" {
		opts = append(opts, reportflow.WithStyle(cfg.Style.Name))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, reportflow.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Font.Path != "" {
		opts = append(opts, reportflow.WithFont(cfg.Font.Path, cfg.Font.Size))
	}
	if timeout > 0 {
		opts = append(opts, reportflow.WithTimeout(timeout))
	}
	return opts
}

// newLogger builds the CLI logger on w. Verbose shows debug records,
// quiet only warnings and errors.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// pageSettings applies the configured page values over the template's.
// Returns nil when nothing is configured.
func pageSettings(base *reportflow.PageSettings, pc config.PageConfig) (*reportflow.PageSettings, error) {
	if pc == (config.PageConfig{}) {
		return nil, nil
	}

	page := reportflow.DefaultPageSettings()
	if base != nil {
		*page = *base
	}
	if pc.Size != "" {
		page.Size = pc.Size
	}
	if pc.Orientation != "" {
		page.Orientation = pc.Orientation
	}
	if pc.Margin > 0 {
		page.Margin = pc.Margin
	}

	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}
