package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-reportflow/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength        = 4096 // template, css, font, assets
	MaxFormatLength      = 10   // "html", "pdf", "png", "yaml"
	MaxPageSizeLength    = 10   // "letter", "a4", "legal"
	MaxOrientationLength = 10   // "portrait", "landscape"
	MaxStyleLength       = 64   // style name
	MaxFieldNameLength   = 200  // groupBy, sortBy
	MaxParamKeyLength    = 100
	MaxParamValueLength  = 500
	MaxParams            = 100
	MaxWorkers           = 32
	MaxTimeout           = 10 * time.Minute
)

// Formats accepted by output.format.
var validFormats = []string{"html", "pdf", "png", "yaml"}

// Config holds all configuration for report generation.
type Config struct {
	Template string            `yaml:"template"` // report template path
	Output   OutputConfig      `yaml:"output"`
	Page     PageConfig        `yaml:"page"`
	Style    StyleConfig       `yaml:"style"`
	Assets   AssetsConfig      `yaml:"assets"`
	Font     FontConfig        `yaml:"font"`
	Data     DataConfig        `yaml:"data"`
	Params   map[string]string `yaml:"params"`
	Workers  int               `yaml:"workers"` // 0 = auto
	Timeout  Duration          `yaml:"timeout"` // 0 = library default
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = same as data file
	Format     string `yaml:"format"`     // empty = html
}

// PageConfig defines page geometry. Values override the template.
type PageConfig struct {
	Size        string  `yaml:"size"`
	Orientation string  `yaml:"orientation"`
	Margin      float64 `yaml:"margin"` // inches, 0 = template value
}

// StyleConfig defines CSS for HTML and PDF output.
type StyleConfig struct {
	Name string `yaml:"name"` // style from assets, empty = default
	CSS  string `yaml:"css"`  // extra CSS file appended after the style
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// FontConfig defines the face used for measuring and PNG drawing.
type FontConfig struct {
	Path string  `yaml:"path"` // TTF file, empty = built-in face
	Size float64 `yaml:"size"` // points, used with path
}

// DataConfig defines record ordering.
type DataConfig struct {
	GroupBy string `yaml:"groupBy"`
	SortBy  string `yaml:"sortBy"`
}

// Duration is a time.Duration read from a string such as "90s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"template", c.Template, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"output.format", c.Output.Format, MaxFormatLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"style.name", c.Style.Name, MaxStyleLength},
		{"style.css", c.Style.CSS, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"font.path", c.Font.Path, MaxPathLength},
		{"data.groupBy", c.Data.GroupBy, MaxFieldNameLength},
		{"data.sortBy", c.Data.SortBy, MaxFieldNameLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Output.Format != "" && !contains(validFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("%w: output.format %q (must be %s)", ErrInvalidValue, c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative, got %.2f", ErrInvalidValue, c.Page.Margin)
	}
	if c.Font.Size < 0 {
		return fmt.Errorf("%w: font.size must not be negative, got %.2f", ErrInvalidValue, c.Font.Size)
	}

	if len(c.Params) > MaxParams {
		return fmt.Errorf("%w: params (%d entries, max %d)", ErrInvalidValue, len(c.Params), MaxParams)
	}
	for k, v := range c.Params {
		if k == "" {
			return fmt.Errorf("%w: params: empty key", ErrInvalidValue)
		}
		if err := validateFieldLength("params key", k, MaxParamKeyLength); err != nil {
			return err
		}
		if err := validateFieldLength("params."+k, v, MaxParamValueLength); err != nil {
			return err
		}
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	if t := time.Duration(c.Timeout); t < 0 || t > MaxTimeout {
		return fmt.Errorf("%w: timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxTimeout, t)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultConfig returns a neutral configuration: embedded assets, html
// output, template page settings.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Format: "html"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-reportflow/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-reportflow", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
