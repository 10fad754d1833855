package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"voltweb/internal/config"
	"voltweb/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	MissingValue string
	BOMPrefix    bool // Add UTF-8 BOM for Excel compatibility
}

// WriteWide writes a wide table as CSV: one header row, then one row per
// aligned position
func WriteWide(w io.Writer, table *domain.WideTable, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(table.Header()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(table.Columns))
	for row := 0; row < table.Rows; row++ {
		for i, col := range table.Columns {
			record[i] = formatFloat(col.Values[row], options.MissingValue)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", row, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVWriter writes wide exports into the exports directory
type CSVWriter struct {
	paths   *config.Paths
	options WriteOptions
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, options WriteOptions, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		paths:   paths,
		options: options,
		logger:  logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteFile writes table to fileName. Relative names resolve to the exports
// directory. It returns the full path written.
func (w *CSVWriter) WriteFile(fileName string, table *domain.WideTable) (string, error) {
	fullPath := w.resolvePath(fileName)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", fileName),
		slog.String("full_path", fullPath),
		slog.Int("record_count", table.Rows))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteWide(file, table, w.options); err != nil {
		file.Close()
		return "", err
	}
	return fullPath, file.Close()
}

// resolvePath resolves a path to the exports directory
func (w *CSVWriter) resolvePath(fileName string) string {
	if filepath.IsAbs(fileName) || w.paths == nil {
		return fileName
	}
	return w.paths.GetExportPath(fileName)
}
