package models

import (
	"errors"
	"fmt"
	"time"
)

// Event represents a single analytics event row
type Event struct {
	TeamID     int64     `json:"team_id" parquet:"team_id"`
	Timestamp  time.Time `json:"timestamp" parquet:"timestamp,timestamp(millisecond)"`
	Event      string    `json:"event" parquet:"event"`
	DistinctID string    `json:"distinct_id" parquet:"distinct_id"`
	Properties string    `json:"properties" parquet:"properties"`
}

// Column names as they appear in the parquet schema.
const (
	ColumnTeamID     = "team_id"
	ColumnTimestamp  = "timestamp"
	ColumnEvent      = "event"
	ColumnDistinctID = "distinct_id"
	ColumnProperties = "properties"
)

// EventTypes is the fixed enumeration of event names.
var EventTypes = []string{"page_view", "click", "signup", "login", "purchase"}

// ColumnNames returns the declared column names in schema order.
func ColumnNames() []string {
	return []string{
		ColumnTeamID,
		ColumnTimestamp,
		ColumnEvent,
		ColumnDistinctID,
		ColumnProperties,
	}
}

// ErrUnknownColumn is returned when a filter configuration names a column
// that does not exist in the event schema.
var ErrUnknownColumn = errors.New("unknown column")

// FilterColumns is a validated set of column names that should carry a
// bloom filter. Construct it with NewFilterColumns so that a typo fails at
// configuration time rather than silently producing a file with no filter.
type FilterColumns struct {
	names []string
}

// NewFilterColumns validates the given column names against the event
// schema and returns them as a FilterColumns set. Duplicates are collapsed.
func NewFilterColumns(names ...string) (FilterColumns, error) {
	known := make(map[string]bool, 5)
	for _, c := range ColumnNames() {
		known[c] = true
	}

	var fc FilterColumns
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !known[name] {
			return FilterColumns{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		fc.names = append(fc.names, name)
	}
	return fc, nil
}

// DefaultFilterColumns returns the default filter configuration: a bloom
// filter on distinct_id, the high cardinality column where membership
// tests pay off.
func DefaultFilterColumns() FilterColumns {
	fc, _ := NewFilterColumns(ColumnDistinctID)
	return fc
}

// Names returns the column names in the set.
func (fc FilterColumns) Names() []string {
	return fc.names
}

// Contains reports whether the named column is in the set.
func (fc FilterColumns) Contains(name string) bool {
	for _, n := range fc.names {
		if n == name {
			return true
		}
	}
	return false
}

// Empty reports whether no columns are filter enabled.
func (fc FilterColumns) Empty() bool {
	return len(fc.names) == 0
}
