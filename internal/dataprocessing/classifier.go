package dataprocessing

import "voltweb/pkg/contracts/domain"

// Column headers written by NOVA for the supported techniques
const (
	ColumnScan          = "Scan"
	ColumnPotential     = "WE(1).Potential (V)"
	ColumnCurrent       = "WE(1).Current (A)"
	ColumnBasePotential = "WE(1).Base.Potential (V)"
	ColumnDeltaCurrent  = "WE(1).δ.Current (A)"
)

var (
	cvSignature  = []string{ColumnScan, ColumnPotential, ColumnCurrent}
	dpvSignature = []string{ColumnBasePotential, ColumnDeltaCurrent}
)

// Classify detects the measurement technique from the header names alone.
// CV takes precedence when a table carries both signatures.
func Classify(table *domain.RawTable) domain.Technique {
	if table == nil {
		return domain.TechniqueUnknown
	}
	if hasColumns(table, cvSignature) {
		return domain.TechniqueCV
	}
	if hasColumns(table, dpvSignature) {
		return domain.TechniqueDPV
	}
	return domain.TechniqueUnknown
}

// RequiredColumns returns the header signature of a technique
func RequiredColumns(technique domain.Technique) []string {
	switch technique {
	case domain.TechniqueCV:
		return append([]string(nil), cvSignature...)
	case domain.TechniqueDPV:
		return append([]string(nil), dpvSignature...)
	default:
		return nil
	}
}

func hasColumns(table *domain.RawTable, names []string) bool {
	for _, name := range names {
		if !table.HasColumn(name) {
			return false
		}
	}
	return true
}
