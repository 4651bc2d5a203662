package assets

import (
	"errors"
	"slices"
)

// Compile-time interface check.
var _ StyleLoader = (*AssetResolver)(nil)

// AssetResolver tries a custom directory first and falls back to the
// embedded styles when a style is not found there.
type AssetResolver struct {
	custom   StyleLoader // nil without a custom path
	embedded StyleLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses
// embedded styles only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle implements StyleLoader. Only not-found errors fall back;
// validation and I/O errors from the custom directory are returned.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}
	css, err := r.custom.LoadStyle(name)
	if err == nil || !errors.Is(err, ErrStyleNotFound) {
		return css, err
	}
	return r.embedded.LoadStyle(name)
}

// Styles implements StyleLoader, merging both sources.
func (r *AssetResolver) Styles() []string {
	names := r.embedded.Styles()
	if r.custom != nil {
		names = append(names, r.custom.Styles()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}
