package domain

import "sort"

// Technique identifies the electrochemical measurement technique of a file
type Technique string

const (
	TechniqueCV      Technique = "CV"      // Cyclic voltammetry
	TechniqueDPV     Technique = "DPV"     // Differential pulse voltammetry
	TechniqueUnknown Technique = "Unknown" // Header signature not recognized
)

// String returns the technique tag
func (t Technique) String() string {
	return string(t)
}

// IsKnown reports whether the technique can be extracted
func (t Technique) IsKnown() bool {
	return t == TechniqueCV || t == TechniqueDPV
}

// ScanSet is a set of scan identifiers. Order is meaningful: sets read from a
// table keep first-encountered order, sets produced by a selection are sorted.
type ScanSet []int

// Contains reports whether scan is a member of the set
func (s ScanSet) Contains(scan int) bool {
	for _, v := range s {
		if v == scan {
			return true
		}
	}
	return false
}

// Sorted returns an ascending copy of the set
func (s ScanSet) Sorted() ScanSet {
	out := make(ScanSet, len(s))
	copy(out, s)
	sort.Ints(out)
	return out
}
