// Package exporter writes wide CV tables produced by dataprocessing.ExportWide.
//
// This package contains four components:
//
// CSVWriter: comma-delimited CSV output to any io.Writer or to a file under
// the exports directory, with an optional UTF-8 BOM for Excel.
//
// Archive: bundles several CSV exports into one zip, one entry per source
// file named processed_<originalFilename>.
//
// Workbook: writes every table as its own sheet of an XLSX workbook.
//
// Exporter: reshapes a batch of tables in parallel and picks the artifact
// layout (single CSV, zip or workbook).
//
// Example usage:
//
//	exp := exporter.New(exporter.Options{MissingValue: "", Workers: 4}, logger)
//	prepared, err := exp.Prepare(ctx, inputs)
//	if err != nil {
//	    return err
//	}
//	err = prepared.Write(w, exporter.FormatCSV)
package exporter
