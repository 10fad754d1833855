package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	apierrors "voltweb/internal/errors"
	"voltweb/pkg/contracts/domain"
)

// MicroScale converts amperes to microamperes
const MicroScale = 1e6

// ExtractResult holds the series of one file plus informational diagnostics
type ExtractResult struct {
	Available   domain.ScanSet
	Selected    domain.ScanSet
	Series      []domain.Series
	Diagnostics []domain.Diagnostic
}

// Extractor turns a classified table into labeled series
type Extractor struct {
	opts   ProcessingOptions
	logger *slog.Logger
}

// NewExtractor creates an extractor
func NewExtractor(opts ProcessingOptions, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		opts:   opts,
		logger: logger.With(slog.String("component", "extractor")),
	}
}

// Extract produces the series of one table. Series are returned uncolored
// and with a zero file index; the caller owns identity.
func (e *Extractor) Extract(table *domain.RawTable, technique domain.Technique, fileLabel, scanExpr string) (ExtractResult, error) {
	switch technique {
	case domain.TechniqueCV:
		return e.extractCV(table, fileLabel, scanExpr)
	case domain.TechniqueDPV:
		return e.extractDPV(table, fileLabel, scanExpr)
	default:
		return ExtractResult{}, apierrors.NewUnsupportedTechniqueError(
			fmt.Sprintf("cannot extract series from %s as %s", fileLabel, technique), ErrUnsupportedTechnique)
	}
}

func (e *Extractor) extractCV(table *domain.RawTable, fileLabel, scanExpr string) (ExtractResult, error) {
	if err := requireNumeric(table, cvSignature...); err != nil {
		return ExtractResult{}, err
	}

	sel, err := ParseRangeSelector(scanExpr)
	if err != nil {
		return ExtractResult{}, apierrors.NewParsingError("Invalid scan range format. Use format like '1-3,5' or 'all'.", err).
			WithContext("scan_range", scanExpr)
	}

	if err := ToMicroamps(table, ColumnCurrent); err != nil {
		return ExtractResult{}, err
	}

	available, err := ScansOf(table)
	if err != nil {
		return ExtractResult{}, apierrors.NewExtractionError("failed to enumerate scans", err)
	}

	result := ExtractResult{
		Available: available,
		Selected:  sel.Intersect(available),
	}

	scanCol, _ := table.Column(ColumnScan)
	potential, _ := table.Column(ColumnPotential)
	current, _ := table.Column(ColumnCurrent)

	if unscanned := countNaN(scanCol.Floats); unscanned > 0 {
		result.Diagnostics = append(result.Diagnostics, missingValuesDiagnostic(fileLabel,
			fmt.Sprintf("%d rows without a scan number", unscanned)))
	}

	skipped := 0
	for _, scan := range result.Selected {
		var x, y []float64
		for row, v := range scanCol.Floats {
			if math.IsNaN(v) || int(v) != scan {
				continue
			}
			if !isFinite(potential.Floats[row]) || !isFinite(current.Floats[row]) {
				skipped++
				continue
			}
			x = append(x, potential.Floats[row])
			y = append(y, current.Floats[row])
		}

		if len(x) == 0 {
			if e.opts.EmitWarningOnEmptyScan {
				result.Diagnostics = append(result.Diagnostics, emptyScanDiagnostic(fileLabel, fmt.Sprintf("scan %d", scan)))
			}
			continue
		}

		result.Series = append(result.Series, domain.Series{
			Label:     fmt.Sprintf("%s - Scan %d", fileLabel, scan),
			X:         x,
			Y:         y,
			FileName:  fileLabel,
			Scan:      scan,
			Technique: domain.TechniqueCV,
		})
	}

	if skipped > 0 {
		result.Diagnostics = append(result.Diagnostics, missingValuesDiagnostic(fileLabel,
			fmt.Sprintf("%d points with a missing potential or current", skipped)))
	}

	if missing := sel.Missing(available); len(missing) > 0 && e.opts.EmitWarningOnEmptyScan {
		label := "scan "
		if len(missing) > 1 || missing[0].Lo != missing[0].Hi {
			label = "scans "
		}
		result.Diagnostics = append(result.Diagnostics, emptyScanDiagnostic(fileLabel, label+FormatSpans(missing)))
	}

	e.logger.Debug("extracted CV series",
		slog.String("file", fileLabel),
		slog.Int("available_scans", len(available)),
		slog.Int("selected_scans", len(result.Selected)),
		slog.Int("series", len(result.Series)))

	return result, nil
}

// extractDPV ignores the scan selection, but a malformed expression is still
// reported as a warning for the file.
func (e *Extractor) extractDPV(table *domain.RawTable, fileLabel, scanExpr string) (ExtractResult, error) {
	if err := requireNumeric(table, dpvSignature...); err != nil {
		return ExtractResult{}, err
	}
	if err := ToMicroamps(table, ColumnDeltaCurrent); err != nil {
		return ExtractResult{}, err
	}

	var result ExtractResult
	if _, err := ParseRangeSelector(scanExpr); err != nil {
		result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
			File:     fileLabel,
			Severity: domain.SeverityWarning,
			Kind:     domain.KindParseError,
			Message:  fmt.Sprintf("Invalid scan range format ignored for %s: DPV data has no scans.", fileLabel),
		})
	}

	potential, _ := table.Column(ColumnBasePotential)
	delta, _ := table.Column(ColumnDeltaCurrent)

	series := domain.Series{
		Label:     fileLabel,
		X:         make([]float64, 0, len(potential.Floats)),
		Y:         make([]float64, 0, len(delta.Floats)),
		FileName:  fileLabel,
		Technique: domain.TechniqueDPV,
	}
	skipped := 0
	for row := range potential.Floats {
		x, y := potential.Floats[row], delta.Floats[row]
		if !isFinite(x) || !isFinite(y) {
			skipped++
			continue
		}
		series.X = append(series.X, x)
		series.Y = append(series.Y, y)
	}
	if skipped > 0 {
		result.Diagnostics = append(result.Diagnostics, missingValuesDiagnostic(fileLabel,
			fmt.Sprintf("%d points with a missing potential or current", skipped)))
	}

	e.logger.Debug("extracted DPV series",
		slog.String("file", fileLabel),
		slog.Int("points", series.Len()),
		slog.Int("skipped", skipped))

	if series.Len() == 0 {
		result.Diagnostics = append(result.Diagnostics, emptyScanDiagnostic(fileLabel, "any row"))
		return result, nil
	}
	result.Series = []domain.Series{series}
	return result, nil
}

// ToMicroamps scales a current column from A to µA. The conversion is applied
// at most once per table and column.
func ToMicroamps(table *domain.RawTable, column string) error {
	if _, err := table.ConvertOnce(column, func(values []float64) {
		floats.Scale(MicroScale, values)
	}); err != nil {
		return apierrors.NewExtractionError("unit conversion failed", err)
	}
	return nil
}

func requireNumeric(table *domain.RawTable, names ...string) error {
	for _, name := range names {
		col, ok := table.Column(name)
		if !ok {
			return apierrors.NewUnsupportedTechniqueError(
				fmt.Sprintf("required column %q is missing", name), fmt.Errorf("%w: %w: %s", ErrUnsupportedTechnique, ErrMissingColumn, name))
		}
		if !col.Numeric {
			return apierrors.NewExtractionError(
				fmt.Sprintf("column %q contains non-numeric values", name), fmt.Errorf("%w: %s", ErrNonNumericColumn, name))
		}
	}
	return nil
}

func emptyScanDiagnostic(file, what string) domain.Diagnostic {
	return domain.Diagnostic{
		File:     file,
		Severity: domain.SeverityInfo,
		Kind:     domain.KindEmptyScanResult,
		Message:  fmt.Sprintf("No data found for %s in %s", what, file),
	}
}

// missingValuesDiagnostic reports rows left out of the series. JSON has no
// encoding for NaN, so series only ever hold finite points.
func missingValuesDiagnostic(file, what string) domain.Diagnostic {
	return domain.Diagnostic{
		File:     file,
		Severity: domain.SeverityWarning,
		Kind:     domain.KindMissingValues,
		Message:  fmt.Sprintf("Skipped %s in %s", what, file),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func countNaN(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
