package reportflow

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/alnah/go-reportflow/internal/datasource"
)

// Record is one row of input data, keyed by column name.
type Record = datasource.Record

// Compile-time interface check.
var _ DataNavigator = (*Navigator)(nil)

// navState is shared by a navigator and its children.
type navState struct {
	all    []Record
	active *Navigator
}

// Navigator walks in-memory records. When grouped, the top-level cursor
// moves over groups and ChildNavigator walks the records of the current
// group.
type Navigator struct {
	records []Record
	groups  []datasource.Group
	grouped bool
	index   int
	state   *navState
}

// NewNavigator sorts records on sortBy, then groups them on groupBy.
// Empty column names disable sorting or grouping. The input slice is not
// modified.
func NewNavigator(records []Record, groupBy, sortBy string) *Navigator {
	recs := slices.Clone(records)
	datasource.SortBy(recs, sortBy)

	n := &Navigator{
		records: recs,
		index:   -1,
		state:   &navState{all: recs},
	}
	if groupBy != "" {
		n.grouped = true
		n.groups = datasource.GroupBy(recs, groupBy)
	}
	return n
}

// Count returns the number of positions: groups when grouped, records
// otherwise.
func (n *Navigator) Count() int {
	if n.grouped {
		return len(n.groups)
	}
	return len(n.records)
}

// CurrentRow returns the zero-based position, -1 before the first MoveNext.
func (n *Navigator) CurrentRow() int { return n.index }

// Current returns the current record, or nil outside the data. For a
// grouped navigator it is the first record of the current group.
func (n *Navigator) Current() Record {
	if !n.valid() {
		return nil
	}
	if n.grouped {
		return n.groups[n.index].Records[0]
	}
	return n.records[n.index]
}

// Reset moves before the first position.
func (n *Navigator) Reset() { n.index = -1 }

// MoveNext advances and reports whether a position is current.
func (n *Navigator) MoveNext() bool {
	if n.index < n.Count() {
		n.index++
	}
	return n.valid()
}

// HasMoreData reports whether a position follows the current one.
func (n *Navigator) HasMoreData() bool {
	return n.index < n.Count()-1
}

// Fill writes current record values into the DataItems of items,
// descending into nested containers. It also marks n as the cursor
// expressions are evaluated against.
func (n *Navigator) Fill(items []Item) error {
	n.state.active = n
	fillItems(items, n.Current())
	return nil
}

func fillItems(items []Item, rec Record) {
	for _, item := range items {
		switch v := item.(type) {
		case *DataItem:
			v.Text = FormatValue(rec[v.Column])
		case Container:
			fillItems(v.Children(), rec)
		}
	}
}

// HasChildren reports whether the current position is a group.
func (n *Navigator) HasChildren() bool {
	return n.grouped && n.valid()
}

// ChildNavigator returns a navigator over the records of the current
// group, or nil when there is none.
func (n *Navigator) ChildNavigator() DataNavigator {
	if !n.HasChildren() {
		return nil
	}
	return &Navigator{
		records: n.groups[n.index].Records,
		index:   -1,
		state:   n.state,
	}
}

// GroupKey returns the key of the current group.
func (n *Navigator) GroupKey() any {
	if !n.HasChildren() {
		return nil
	}
	return n.groups[n.index].Key
}

// ScopeRecords returns the records aggregates run over: the current group
// for a grouped navigator inside the data, its own records otherwise.
func (n *Navigator) ScopeRecords() []Record {
	if n.grouped {
		if n.valid() {
			return n.groups[n.index].Records
		}
		return n.state.all
	}
	return n.records
}

// AllRecords returns every record after sorting.
func (n *Navigator) AllRecords() []Record { return n.state.all }

// Active returns the navigator that filled the last row.
func (n *Navigator) Active() *Navigator {
	if n.state.active == nil {
		return n
	}
	return n.state.active
}

func (n *Navigator) valid() bool {
	return n.index >= 0 && n.index < n.Count()
}

// FormatValue renders a record value as display text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}
