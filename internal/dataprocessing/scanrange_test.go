package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/pkg/contracts/domain"
)

func TestParseScanRange_RangeProperty(t *testing.T) {
	available := domain.ScanSet{1, 2, 3, 4, 5, 6, 7, 8}

	for a := 0; a <= 9; a++ {
		for b := a; b <= 9; b++ {
			got, err := ParseScanRange(formatRange(a, b), available)
			require.NoError(t, err)

			want := domain.ScanSet{}
			for n := a; n <= b; n++ {
				if available.Contains(n) {
					want = append(want, n)
				}
			}
			assert.Equal(t, want, got, "range %d-%d", a, b)
		}
	}
}

func formatRange(a, b int) string {
	return Span{Lo: a, Hi: b}.String()
}

func TestParseScanRange(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		available domain.ScanSet
		want      domain.ScanSet
		wantErr   bool
	}{
		{"all keeps order", "all", domain.ScanSet{3, 1, 2}, domain.ScanSet{3, 1, 2}, false},
		{"all case insensitive", "  ALL ", domain.ScanSet{1, 2}, domain.ScanSet{1, 2}, false},
		{"all of empty", "all", domain.ScanSet{}, domain.ScanSet{}, false},
		{"reversed range", "3-1", domain.ScanSet{1, 2, 3}, domain.ScanSet{}, false},
		{"mixed terms", "1-3,5", domain.ScanSet{1, 2, 3, 4, 5, 6}, domain.ScanSet{1, 2, 3, 5}, false},
		{"whitespace", " 2 - 3 , 6 ", domain.ScanSet{1, 2, 3, 6}, domain.ScanSet{2, 3, 6}, false},
		{"sorted output", "5,1", domain.ScanSet{5, 1}, domain.ScanSet{1, 5}, false},
		{"absent scans dropped", "7-9", domain.ScanSet{1, 2}, domain.ScanSet{}, false},
		{"overlapping terms", "1-3,2-4", domain.ScanSet{1, 2, 3, 4}, domain.ScanSet{1, 2, 3, 4}, false},
		{"reversed next to valid", "3-1,2", domain.ScanSet{1, 2, 3}, domain.ScanSet{2}, false},
		{"empty expression", "", domain.ScanSet{1}, domain.ScanSet{}, true},
		{"non integer", "1-x", domain.ScanSet{1}, domain.ScanSet{}, true},
		{"triple range", "1-2-3", domain.ScanSet{1, 2, 3}, domain.ScanSet{}, true},
		{"dangling comma", "1,", domain.ScanSet{1}, domain.ScanSet{}, true},
		{"negative", "-1", domain.ScanSet{1}, domain.ScanSet{}, true},
		{"one bad term fails all", "1,2,three", domain.ScanSet{1, 2, 3}, domain.ScanSet{}, true},
		{"float", "1.5", domain.ScanSet{1}, domain.ScanSet{}, true},
		{"leading plus", "+3", domain.ScanSet{3}, domain.ScanSet{}, true},
		{"plus in range", "1-+3", domain.ScanSet{1, 2, 3}, domain.ScanSet{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScanRange(tt.expr, tt.available)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScanRange)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScanRange_AllReturnsCopy(t *testing.T) {
	available := domain.ScanSet{2, 1}
	got, err := ParseScanRange("all", available)
	require.NoError(t, err)

	got[0] = 99
	assert.Equal(t, domain.ScanSet{2, 1}, available)
}

func TestRangeSelector(t *testing.T) {
	sel, err := ParseRangeSelector("10-12, 1, 2-3, 11")
	require.NoError(t, err)

	assert.False(t, sel.All)
	assert.Equal(t, []Span{{1, 3}, {10, 12}}, sel.Spans)
	assert.Equal(t, "1-3,10-12", sel.String())
	assert.True(t, sel.Contains(2))
	assert.True(t, sel.Contains(12))
	assert.False(t, sel.Contains(4))
	assert.False(t, sel.Contains(13))

	all, err := ParseRangeSelector("All")
	require.NoError(t, err)
	assert.True(t, all.All)
	assert.True(t, all.Contains(1000))
	assert.Equal(t, "all", all.String())
}

func TestRangeSelector_Missing(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		available domain.ScanSet
		want      []Span
	}{
		{"all never misses", "all", domain.ScanSet{}, nil},
		{"nothing missing", "1-3", domain.ScanSet{3, 1, 2}, nil},
		{"tail missing", "1-5", domain.ScanSet{1, 2}, []Span{{3, 5}}},
		{"gaps", "1-10", domain.ScanSet{2, 5, 6}, []Span{{1, 1}, {3, 4}, {7, 10}}},
		{"single", "4", domain.ScanSet{1, 2, 3}, []Span{{4, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseRangeSelector(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Missing(tt.available))
		})
	}
}

func TestScansOf(t *testing.T) {
	table := mustTable(t, "cv.csv", "Scan;WE(1).Potential (V);WE(1).Current (A)\n2;0;0\n2;0;0\n1;0;0\n;0;0\n3;0;0\n")
	scans, err := ScansOf(table)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanSet{2, 1, 3}, scans)

	noScan := mustTable(t, "dpv.csv", dpvCSV(2))
	scans, err = ScansOf(noScan)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanSet{1}, scans)

	textScan := mustTable(t, "bad.csv", "Scan\nfirst\n")
	_, err = ScansOf(textScan)
	assert.ErrorIs(t, err, ErrNonNumericColumn)

	fractional := mustTable(t, "frac.csv", "Scan\n1\n1.5\n")
	_, err = ScansOf(fractional)
	assert.ErrorIs(t, err, ErrNonNumericColumn)
	assert.Contains(t, err.Error(), "1.5")
}

func TestFormatSpans(t *testing.T) {
	assert.Equal(t, "1-3, 5", FormatSpans([]Span{{1, 3}, {5, 5}}))
	assert.Equal(t, "", FormatSpans(nil))
}
