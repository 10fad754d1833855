package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format is the artifact layout of an export
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat parses a format name, defaulting to CSV when empty
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// formatFloat renders a value with the shortest exact representation.
// NaN renders as the missing-value marker.
func formatFloat(f float64, missing string) string {
	if math.IsNaN(f) {
		return missing
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
