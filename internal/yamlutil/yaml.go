// Package yamlutil wraps YAML parsing for templates, data files and config.
// Callers never import the YAML library directly.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Input size limits. Data sets are allowed to be much larger than
// templates and config files.
var (
	MaxDocumentSize = 1 << 20  // templates, config
	MaxDataSize     = 64 << 20 // record files
)

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func check(data []byte, v any, limit int) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), limit)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes a document-sized input, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	return decode(data, v, MaxDocumentSize)
}

// UnmarshalStrict decodes a document-sized input and rejects unknown fields.
// Used for config files and report templates where a typo should fail loudly.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, MaxDocumentSize, yaml.Strict())
}

// UnmarshalData decodes a record file. JSON input is accepted since
// YAML is a superset of it.
func UnmarshalData(data []byte, v any) error {
	return decode(data, v, MaxDataSize)
}

func decode(data []byte, v any, limit int, opts ...yaml.DecodeOption) error {
	if err := check(data, v, limit); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
