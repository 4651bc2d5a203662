package main

import (
	"fmt"
	"io"
	"runtime"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: reportflow [flags] <data-file>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a report template over each data file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  data-file    YAML or JSON list of records, or CSV with a header row")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -t, --template <path>     Report template (YAML)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (\"-\" = stdout)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: html, pdf, png, yaml (default: html)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --timeout <d>         PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Data:")
	fmt.Fprintln(w, "      --group-by <column>   Group records by column")
	fmt.Fprintln(w, "      --sort-by <column>    Sort records by column")
	fmt.Fprintln(w, "      --param <k=v>         Report parameter (repeatable)")
	fmt.Fprintln(w, "                            \"auto\" or \"auto:FORMAT\" resolves to today")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name|path>   CSS style name or file path")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file appended after the style")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "      --font <path>         TrueType font for layout and PNG output")
	fmt.Fprintln(w, "      --font-size <f>       Font size in points")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  REPORTFLOW_CONFIG, REPORTFLOW_STYLE, REPORTFLOW_TIMEOUT,")
	fmt.Fprintln(w, "  REPORTFLOW_FORMAT, REPORTFLOW_OUTPUT_DIR, REPORTFLOW_WORKERS")
	fmt.Fprintln(w, "  Flags override environment, environment overrides the config file.")
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "reportflow %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
