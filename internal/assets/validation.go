package assets

import (
	"fmt"
	"strings"
)

// MaxAssetNameLength bounds style names.
const MaxAssetNameLength = 64

// ValidateAssetName checks that a style name is safe to use as a file
// name: not empty, not too long, and free of separators and dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
