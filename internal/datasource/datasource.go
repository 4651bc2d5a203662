// Package datasource loads report records and arranges them for traversal.
//
// Records are plain maps keyed by column name. A data file is either a YAML
// or JSON list of maps (optionally wrapped in a "records" key) or a CSV
// file with a header row.
package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-reportflow/internal/yamlutil"
)

// Record is one row of report data.
type Record = map[string]any

// Sentinel errors for data loading.
var (
	ErrUnknownFormat = errors.New("unknown data format")
	ErrMalformedData = errors.New("malformed data")
)

// Supported data formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// FormatFromPath guesses the data format from a file extension.
// Anything unknown is treated as YAML.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Load decodes records from data in the given format.
func Load(data []byte, format string) ([]Record, error) {
	switch strings.ToLower(format) {
	case FormatYAML, FormatJSON, "yml":
		return loadYAML(data)
	case FormatCSV:
		return loadCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type wrapped struct {
	Records []Record `yaml:"records"`
}

func loadYAML(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	// A bare list is the common case; fall back to {records: [...]}.
	if trimmed[0] == '[' || trimmed[0] == '-' {
		var records []Record
		if err := yamlutil.UnmarshalData(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		return records, nil
	}

	var w wrapped
	if err := yamlutil.UnmarshalData(trimmed, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return w.Records, nil
}

// loadCSV reads a header row followed by records. Numeric cells are
// converted so that sorting and aggregates behave.
func loadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedData, err)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedData, line, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = parseCell(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCell(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
