package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"voltweb/pkg/contracts/domain"
)

// Delimiter is the field separator of NOVA measurement exports
const Delimiter = ';'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable parses a semicolon-delimited export with a header row into a
// RawTable. A column is numeric when every non-empty cell parses as a float;
// empty cells become NaN. Short rows are padded with empty cells.
func ReadTable(name string, r io.Reader) (*domain.RawTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	// Trailing separators produce unnamed empty columns
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
	}

	cells := make([][]string, len(header))
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read %s line %d: %w", name, line, err)
		}
		if isBlankRecord(record) {
			continue
		}
		for i := range header {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			cells[i] = append(cells[i], value)
		}
	}

	columns := make([]domain.Column, len(header))
	for i, h := range header {
		columns[i] = buildColumn(strings.TrimSpace(h), cells[i])
	}

	return domain.NewRawTable(name, columns)
}

// ReadTableFile opens path and parses it with ReadTable, using the base name
// of the file as the table name
func ReadTableFile(path string) (*domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadTable(filepath.Base(path), f)
}

func buildColumn(name string, values []string) domain.Column {
	if values == nil {
		values = []string{}
	}
	col := domain.Column{Name: name, Strings: values}

	floats := make([]float64, len(values))
	for i, v := range values {
		f, ok := parseNumber(v)
		if !ok {
			return col
		}
		floats[i] = f
	}

	col.Numeric = true
	col.Floats = floats
	return col
}

// parseNumber accepts "." or "," as the decimal separator.
// Empty cells parse as NaN.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return math.NaN(), true
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
