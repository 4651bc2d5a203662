package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-reportflow/internal/config"
)

const envPrefix = "REPORTFLOW_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // REPORTFLOW_CONFIG: config file name or path
	Style      string        // REPORTFLOW_STYLE: CSS style name or path
	Timeout    time.Duration // REPORTFLOW_TIMEOUT: PDF generation timeout
	Format     string        // REPORTFLOW_FORMAT: html, pdf, png, yaml
	OutputDir  string        // REPORTFLOW_OUTPUT_DIR: default output directory
	Workers    int           // REPORTFLOW_WORKERS: parallel workers
}

// knownEnvVars lists valid REPORTFLOW_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"REPORTFLOW_CONFIG":     true,
	"REPORTFLOW_STYLE":      true,
	"REPORTFLOW_TIMEOUT":    true,
	"REPORTFLOW_FORMAT":     true,
	"REPORTFLOW_OUTPUT_DIR": true,
	"REPORTFLOW_WORKERS":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numeric values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("REPORTFLOW_CONFIG"),
		Style:      getenv("REPORTFLOW_STYLE"),
		Format:     getenv("REPORTFLOW_FORMAT"),
		OutputDir:  getenv("REPORTFLOW_OUTPUT_DIR"),
	}

	if timeout := getenv("REPORTFLOW_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("REPORTFLOW_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized REPORTFLOW_* variables.
func warnUnknownEnvVars(environ []string, w io.Writer) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies set environment values over the config file.
// CLI flags are applied afterwards by mergeFlags, giving:
// flags > environment > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" {
		cfg.Style.Name = env.Style
	}
	if env.Timeout > 0 {
		cfg.Timeout = config.Duration(env.Timeout)
	}
	if env.Format != "" {
		cfg.Output.Format = env.Format
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
