package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Header rows of the fixture exports
const (
	CVHeader      = "Index;Time (s);Scan;WE(1).Potential (V);WE(1).Current (A)"
	DPVHeader     = "Index;WE(1).Base.Potential (V);WE(1).δ.Current (A)"
	UnknownHeader = "Index;Time (s);WE(1).Charge (C)"
)

// CVCSV builds a CV export with the given number of rows per scan, scans
// numbered from 1. Potential is row/100 within each scan and current is 1 A.
func CVCSV(rowsPerScan ...int) string {
	var b strings.Builder
	b.WriteString(CVHeader + "\n")
	index := 1
	for scan, rows := range rowsPerScan {
		for r := 0; r < rows; r++ {
			fmt.Fprintf(&b, "%d;%.2f;%d;%.3f;%g\n", index, float64(index)*0.1, scan+1, float64(r)/100, 1.0)
			index++
		}
	}
	return b.String()
}

// DPVCSV builds a DPV export with n rows. Base potential starts at -0.5 V in
// 10 mV steps and the delta current is 2 µA.
func DPVCSV(n int) string {
	var b strings.Builder
	b.WriteString(DPVHeader + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d;%.3f;%g\n", i+1, -0.5+float64(i)*0.01, 2e-6)
	}
	return b.String()
}

// UnknownCSV builds an export that matches no technique signature
func UnknownCSV(n int) string {
	var b strings.Builder
	b.WriteString(UnknownHeader + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d;%.1f;%g\n", i+1, float64(i)*0.5, 1e-3)
	}
	return b.String()
}

// MeasurementFixtures writes fixture exports into a test data directory
type MeasurementFixtures struct {
	TestDataDir string
}

// NewMeasurementFixtures creates a new fixtures manager
func NewMeasurementFixtures(testDataDir string) *MeasurementFixtures {
	return &MeasurementFixtures{
		TestDataDir: testDataDir,
	}
}

// WriteFile writes content to name inside the test data directory and
// returns the full path
func (f *MeasurementFixtures) WriteFile(name, content string) (string, error) {
	if err := os.MkdirAll(f.TestDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create test data directory: %w", err)
	}
	path := filepath.Join(f.TestDataDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// GenerateTestDataFiles writes one CV, one DPV and one unrecognized export
// and returns their paths in that order
func (f *MeasurementFixtures) GenerateTestDataFiles() ([]string, error) {
	files := []struct {
		name    string
		content string
	}{
		{"cv_two_scans.csv", CVCSV(10, 7)},
		{"dpv.txt", DPVCSV(20)},
		{"unknown.csv", UnknownCSV(5)},
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := f.WriteFile(file.name, file.content)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CleanupTestData removes all test data files
func (f *MeasurementFixtures) CleanupTestData() error {
	return os.RemoveAll(f.TestDataDir)
}
