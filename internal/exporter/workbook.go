package exporter

import (
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_",
)

// WriteWorkbook writes every entry as one sheet of an XLSX workbook. Missing
// cells hold the missing-value marker, or stay empty when it is "".
func WriteWorkbook(w io.Writer, entries []Entry, options WriteOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool)

	for i, entry := range entries {
		name := sheetName(entry.Name, used)

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, entry, options); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, entry Entry, options WriteOptions) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}

	table := entry.Table
	header := make([]interface{}, len(table.Columns))
	for i, name := range table.Header() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	row := make([]interface{}, len(table.Columns))
	for r := 0; r < table.Rows; r++ {
		for c, col := range table.Columns {
			v := col.Values[r]
			switch {
			case !math.IsNaN(v):
				row[c] = v
			case options.MissingValue != "":
				row[c] = options.MissingValue
			default:
				row[c] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, sheet, err)
		}
	}

	return sw.Flush()
}

// sheetName derives a valid, unique sheet name from a file name
func sheetName(fileName string, used map[string]bool) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	base = strings.Trim(sheetNameReplacer.Replace(base), "'")
	if base == "" {
		base = "Sheet"
	}

	name := truncate(base, maxSheetName)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
