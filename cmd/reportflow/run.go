package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	reportflow "github.com/alnah/go-reportflow"
	"github.com/alnah/go-reportflow/internal/assets"
	"github.com/alnah/go-reportflow/internal/config"
	"github.com/alnah/go-reportflow/internal/datasource"
	"github.com/alnah/go-reportflow/internal/hints"
)

// run executes the CLI with args (without the program name) and returns
// the process exit code.
func run(args []string, env *Environment) int {
	if len(args) > 0 {
		switch args[0] {
		case "help":
			printUsage(env.Stdout)
			return ExitSuccess
		case "version":
			printVersion(env.Stdout)
			return ExitSuccess
		}
	}

	flags, positional, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'reportflow --help' for usage.")
		return ExitUsage
	}
	if flags.version {
		printVersion(env.Stdout)
		return ExitSuccess
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env); err != nil {
		if errors.Is(err, ErrRenderFailed) {
			// Each failure was already reported with its hint.
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
		} else {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// hintFor returns an actionable hint for well-known failures, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, reportflow.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, reportflow.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, reportflow.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().Styles())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, datasource.ErrMalformedData), errors.Is(err, datasource.ErrUnknownFormat):
		return hints.ForDataFile()
	case errors.Is(err, reportflow.ErrInvalidTemplate):
		return hints.ForTemplate()
	case errors.Is(err, reportflow.ErrEvaluation):
		return hints.ForExpression()
	default:
		return ""
	}
}
