package dataprocessing

import "errors"

var (
	// ErrInvalidScanRange is returned for a malformed scan-range expression
	ErrInvalidScanRange = errors.New("invalid scan range format")

	// ErrUnknownTechnique is returned when a table matches no header signature
	ErrUnknownTechnique = errors.New("unknown file format")

	// ErrUnsupportedTechnique is returned when an extractor or exporter is
	// invoked on a technique it cannot handle
	ErrUnsupportedTechnique = errors.New("unsupported technique")

	// ErrMissingColumn is returned when a required column is absent
	ErrMissingColumn = errors.New("missing column")

	// ErrNonNumericColumn is returned when a required column holds text
	ErrNonNumericColumn = errors.New("non-numeric column")

	// ErrEmptyTable is returned when an input has no header row
	ErrEmptyTable = errors.New("empty table")
)
