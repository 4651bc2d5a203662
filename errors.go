package reportflow

import "errors"

// Sentinel errors for library operations.
var (
	// Converter construction errors.
	ErrNilNavigator = errors.New("data navigator cannot be nil")
	ErrNilPage      = errors.New("page cannot be nil")
	ErrNilLayouter  = errors.New("layouter cannot be nil")

	// ErrNotARow is returned when a row event is fired for a container
	// that is not a row.
	ErrNotARow = errors.New("container is not a row")

	// Collaborator failures.
	ErrLayout     = errors.New("row layout failed")
	ErrEvaluation = errors.New("expression evaluation failed")
	ErrFill       = errors.New("row fill failed")

	// Template errors.
	ErrInvalidTemplate = errors.New("invalid report template")
	ErrEmptyReport     = errors.New("report has no detail section")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Output errors.
	ErrInvalidFormat = errors.New("invalid output format")
	ErrPNGRender     = errors.New("PNG rendering failed")

	// PDF backend errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("renderer pool is closed")
)
