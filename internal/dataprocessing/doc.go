// Package dataprocessing implements the voltammetry processing pipeline:
// reading NOVA CSV exports, classifying them by technique, selecting scans,
// extracting labeled series, assigning colors and composing plots, and
// reshaping CV data into the wide export layout.
//
// # Data Flow
//
//	CSV → ReadTable → Classify → Extract (scan selection ∩ available) → ColorAssigner → Compose
//	                                    └→ ExportWide
//
// Each file flows independently. The Composer is the only cross-file
// aggregator, and the ColorAssigner lives for exactly one ProcessBatch call.
//
// # Usage
//
//	inputs, err := dataprocessing.LoadInputs(ctx, sources, 4)
//	if err != nil {
//	    return err
//	}
//	processor := dataprocessing.NewProcessor(dataprocessing.DefaultOptions(), logger)
//	result := processor.ProcessBatch(ctx, inputs, "1-3,5")
//
// # Error Handling
//
// Failures are isolated per file and reported as domain.Diagnostic values.
// Sentinel errors (ErrInvalidScanRange, ErrUnsupportedTechnique, ...) are
// wrapped in *errors.AppError so callers can match them with errors.Is.
//
// # Units
//
// Current columns are converted from A to µA in place. RawTable.ConvertOnce
// guarantees the conversion runs at most once per table, so repeated
// extraction or export of the same table is stable.
package dataprocessing
