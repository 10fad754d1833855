package domain

import "time"

// FileResult is the outcome of processing one file of a batch
type FileResult struct {
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Technique Technique     `json:"technique"`
	Scans     ScanSet       `json:"scans,omitempty"`
	Series    []Series      `json:"-"`
	Plot      *CombinedPlot `json:"plot,omitempty"`
	Failed    bool          `json:"failed"`
}

// BatchResult is the outcome of one processing run over an uploaded batch
type BatchResult struct {
	ID          string        `json:"id"`
	ScanRange   string        `json:"scan_range"`
	Combined    CombinedPlot  `json:"combined"`
	Files       []FileResult  `json:"files"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Succeeded returns the number of files that contributed series
func (b *BatchResult) Succeeded() int {
	n := 0
	for _, f := range b.Files {
		if !f.Failed {
			n++
		}
	}
	return n
}
