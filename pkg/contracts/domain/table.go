package domain

import (
	"fmt"
	"sync"
)

// Column is one named column of a measurement export.
// Strings always holds the cell text as read; Floats is populated only
// when every non-empty cell parsed as a number (empty cells become NaN).
type Column struct {
	Name    string    `json:"name"`
	Numeric bool      `json:"numeric"`
	Floats  []float64 `json:"-"`
	Strings []string  `json:"-"`
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	return len(c.Strings)
}

// RawTable is an ordered set of equal-length columns loaded from one file.
// It is read-only inside the pipeline except for unit conversions applied
// through ConvertOnce.
type RawTable struct {
	Name    string
	Columns []Column

	index     map[string]int
	mu        sync.Mutex
	converted map[string]bool
}

// NewRawTable builds a table and verifies that all columns have equal length.
// When a header repeats, lookups by name resolve to its first occurrence.
func NewRawTable(name string, columns []Column) (*RawTable, error) {
	t := &RawTable{
		Name:      name,
		Columns:   columns,
		index:     make(map[string]int, len(columns)),
		converted: make(map[string]bool),
	}

	rows := -1
	for i := range columns {
		if rows == -1 {
			rows = columns[i].Len()
		} else if columns[i].Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", columns[i].Name, columns[i].Len(), rows)
		}
		if columns[i].Numeric && len(columns[i].Floats) != columns[i].Len() {
			return nil, fmt.Errorf("column %q has %d numeric values for %d cells", columns[i].Name, len(columns[i].Floats), columns[i].Len())
		}
		if _, exists := t.index[columns[i].Name]; !exists {
			t.index[columns[i].Name] = i
		}
	}

	return t, nil
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// HasColumn reports whether a column with the exact header name exists
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the column with the given header name
func (t *RawTable) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.Columns[i], true
}

// ColumnNames returns the header names in file order
func (t *RawTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// ConvertOnce applies convert to the numeric values of the named column the
// first time it is called for that column. Later calls are no-ops and return
// false, so a unit conversion can never be applied twice to the same table.
func (t *RawTable) ConvertOnce(name string, convert func(values []float64)) (bool, error) {
	col, ok := t.Column(name)
	if !ok {
		return false, fmt.Errorf("column %q not found", name)
	}
	if !col.Numeric {
		return false, fmt.Errorf("column %q is not numeric", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.converted[name] {
		return false, nil
	}
	convert(col.Floats)
	t.converted[name] = true
	return true, nil
}

// Converted reports whether ConvertOnce has already run for the column
func (t *RawTable) Converted(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.converted[name]
}
