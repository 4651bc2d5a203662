// Package assets provides the CSS styles applied to HTML report output.
//
// Styles come from the binary (styles/*.css) or from a directory on disk
// laid out as {basePath}/styles/{name}.css. AssetResolver tries the disk
// first and falls back to the embedded copy, so a user directory can
// override a single style.
package assets

// DefaultStyleName is the style used when none is configured.
const DefaultStyleName = "default"

// StyleLoader loads CSS styles by name (without the .css extension).
type StyleLoader interface {
	// LoadStyle returns ErrStyleNotFound if the style doesn't exist and
	// ErrInvalidAssetName if the name is unsafe.
	LoadStyle(name string) (string, error)

	// Styles lists the available style names, sorted.
	Styles() []string
}

// defaultLoader serves the package-level helpers.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded style.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}
