package main

import (
	"errors"
	"os"

	reportflow "github.com/alnah/go-reportflow"
	"github.com/alnah/go-reportflow/internal/config"
	"github.com/alnah/go-reportflow/internal/datasource"
)

// Exit codes for the reportflow CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All reports rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, template or parameters
	ExitIO      = 3 // Data, template or output file errors
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, reportflow.ErrBrowserConnect) ||
		errors.Is(err, reportflow.ErrPageCreate) ||
		errors.Is(err, reportflow.ErrPageLoad) ||
		errors.Is(err, reportflow.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadTemplate) ||
		errors.Is(err, ErrReadData) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrTerminalOutput) ||
		errors.Is(err, datasource.ErrMalformedData) ||
		errors.Is(err, datasource.ErrUnknownFormat) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrNoTemplate) ||
		errors.Is(err, ErrInvalidParam) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrStdoutOutput) ||
		errors.Is(err, reportflow.ErrInvalidTemplate) ||
		errors.Is(err, reportflow.ErrEmptyReport) ||
		errors.Is(err, reportflow.ErrInvalidPageSize) ||
		errors.Is(err, reportflow.ErrInvalidOrientation) ||
		errors.Is(err, reportflow.ErrInvalidMargin) ||
		errors.Is(err, reportflow.ErrInvalidFormat) ||
		errors.Is(err, reportflow.ErrEvaluation) ||
		errors.Is(err, reportflow.ErrStyleNotFound) ||
		errors.Is(err, reportflow.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
