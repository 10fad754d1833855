package domain

import "math"

// WideColumn is one column of a wide export. Missing cells hold NaN.
type WideColumn struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// WideTable is a multi-scan table reshaped into one potential/current column
// pair per scan, aligned by row position.
type WideTable struct {
	Source  string       `json:"source"`
	Scans   ScanSet      `json:"scans"`
	Columns []WideColumn `json:"columns"`
	Rows    int          `json:"rows"`
}

// Header returns the column names in order
func (w *WideTable) Header() []string {
	names := make([]string, len(w.Columns))
	for i, c := range w.Columns {
		names[i] = c.Name
	}
	return names
}

// IsMissing reports whether the cell at (row, col) holds the missing marker
func (w *WideTable) IsMissing(row, col int) bool {
	return math.IsNaN(w.Columns[col].Values[row])
}
