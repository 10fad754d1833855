package dataprocessing

import (
	"fmt"
	"math"

	apierrors "voltweb/internal/errors"
	"voltweb/pkg/contracts/domain"
)

// Wide export column name prefixes
const (
	PotentialPrefix = "Potential_"
	CurrentPrefix   = "Current_"
)

// ExportWide reshapes a CV table into one potential/current column pair per
// scan, in first-encountered scan order and aligned by row position. Scans
// shorter than the longest are padded with NaN.
func ExportWide(table *domain.RawTable, technique domain.Technique) (*domain.WideTable, error) {
	if technique != domain.TechniqueCV {
		return nil, apierrors.NewUnsupportedTechniqueError(
			fmt.Sprintf("wide export requires CV data, got %s", technique), ErrUnsupportedTechnique)
	}
	if err := requireNumeric(table, cvSignature...); err != nil {
		return nil, err
	}
	if err := ToMicroamps(table, ColumnCurrent); err != nil {
		return nil, err
	}

	scans, err := ScansOf(table)
	if err != nil {
		return nil, apierrors.NewExportError("failed to enumerate scans", err)
	}

	scanCol, _ := table.Column(ColumnScan)
	potential, _ := table.Column(ColumnPotential)
	current, _ := table.Column(ColumnCurrent)

	type slice struct{ x, y []float64 }
	slices := make(map[int]*slice, len(scans))
	for _, scan := range scans {
		slices[scan] = &slice{}
	}
	for row, v := range scanCol.Floats {
		if math.IsNaN(v) {
			continue
		}
		s := slices[int(v)]
		s.x = append(s.x, potential.Floats[row])
		s.y = append(s.y, current.Floats[row])
	}

	rows := 0
	for _, s := range slices {
		if len(s.x) > rows {
			rows = len(s.x)
		}
	}

	wide := &domain.WideTable{
		Source:  table.Name,
		Scans:   scans,
		Columns: make([]domain.WideColumn, 0, 2*len(scans)),
		Rows:    rows,
	}
	for _, scan := range scans {
		s := slices[scan]
		wide.Columns = append(wide.Columns,
			domain.WideColumn{Name: fmt.Sprintf("%s%d", PotentialPrefix, scan), Values: padNaN(s.x, rows)},
			domain.WideColumn{Name: fmt.Sprintf("%s%d", CurrentPrefix, scan), Values: padNaN(s.y, rows)},
		)
	}

	return wide, nil
}

func padNaN(values []float64, rows int) []float64 {
	out := make([]float64, rows)
	n := copy(out, values)
	for i := n; i < rows; i++ {
		out[i] = math.NaN()
	}
	return out
}
