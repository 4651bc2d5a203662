package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags controlling configuration and verbosity.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags holds output destination flags.
type outputFlags struct {
	path   string // file, directory, or "-" for stdout
	format string
}

// dataFlags holds record ordering flags.
type dataFlags struct {
	groupBy string
	sortBy  string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// styleFlags holds CSS and asset flags.
type styleFlags struct {
	style     string // name, path or CSS content
	css       string // extra CSS file
	assetPath string
}

// fontFlags holds the measuring and drawing face.
type fontFlags struct {
	path string
	size float64
}

// cliFlags holds all flags for a reportflow run.
type cliFlags struct {
	common   commonFlags
	template string
	output   outputFlags
	data     dataFlags
	page     pageFlags
	style    styleFlags
	font     fontFlags
	params   []string
	workers  int
	timeout  string
	version  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "output", "o", "", "output file or directory (\"-\" = stdout)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: html, pdf, png, yaml")
}

// addDataFlags adds record ordering flags to a FlagSet.
func addDataFlags(fs *flag.FlagSet, f *dataFlags) {
	fs.StringVar(&f.groupBy, "group-by", "", "column to group records by")
	fs.StringVar(&f.sortBy, "sort-by", "", "column to sort records by")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addStyleFlags adds CSS and asset flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended after the style")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addFontFlags adds font flags to a FlagSet.
func addFontFlags(fs *flag.FlagSet, f *fontFlags) {
	fs.StringVar(&f.path, "font", "", "TrueType font for layout and PNG output")
	fs.Float64Var(&f.size, "font-size", 0, "font size in points (with --font)")
}

// parseFlags parses command-line flags and returns positional args.
// Errors and usage are left to the caller.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("reportflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	f := &cliFlags{}

	fs.StringVarP(&f.template, "template", "t", "", "report template file")
	fs.StringArrayVar(&f.params, "param", nil, "report parameter key=value (repeatable)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.timeout, "timeout", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.version, "version", false, "show version information")

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addDataFlags(fs, &f.data)
	addPageFlags(fs, &f.page)
	addStyleFlags(fs, &f.style)
	addFontFlags(fs, &f.font)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
