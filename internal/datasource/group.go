package datasource

import (
	"cmp"
	"fmt"
	"slices"
)

// Group is a run of records sharing the same key value.
type Group struct {
	Key     any
	Records []Record
}

// SortBy stable-sorts records on one column. Missing values sort first.
func SortBy(records []Record, column string) {
	if column == "" {
		return
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		return Compare(a[column], b[column])
	})
}

// GroupBy sorts records on column and splits them into groups. Record
// order inside a group is preserved from the input.
func GroupBy(records []Record, column string) []Group {
	if len(records) == 0 {
		return nil
	}
	sorted := slices.Clone(records)
	SortBy(sorted, column)

	var groups []Group
	for _, rec := range sorted {
		key := rec[column]
		if n := len(groups); n > 0 && Compare(groups[n-1].Key, key) == 0 {
			groups[n-1].Records = append(groups[n-1].Records, rec)
			continue
		}
		groups = append(groups, Group{Key: key, Records: []Record{rec}})
	}
	return groups
}

// Compare orders two cell values. Numbers compare numerically, nil sorts
// before everything, and anything else falls back to its string form.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	fa, aok := Number(a)
	fb, bok := Number(b)
	if aok && bok {
		return cmp.Compare(fa, fb)
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Number converts any numeric cell to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
