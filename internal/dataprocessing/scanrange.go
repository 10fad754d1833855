package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"voltweb/pkg/contracts/domain"
)

// AllScans is the keyword selecting every available scan
const AllScans = "all"

// Span is an inclusive range of scan numbers
type Span struct {
	Lo, Hi int
}

// String renders the span as "n" or "lo-hi"
func (s Span) String() string {
	if s.Lo == s.Hi {
		return strconv.Itoa(s.Lo)
	}
	return fmt.Sprintf("%d-%d", s.Lo, s.Hi)
}

// RangeSelector is a parsed scan-range expression. Spans are merged and
// sorted; reversed ranges are dropped at parse time.
type RangeSelector struct {
	All   bool
	Spans []Span
}

// ParseRangeSelector parses expr := "all" | term ("," term)*, term := INT | INT "-" INT.
// A single malformed term fails the whole expression. Reversed ranges
// contribute nothing.
func ParseRangeSelector(expr string) (RangeSelector, error) {
	trimmed := strings.TrimSpace(expr)
	if strings.EqualFold(trimmed, AllScans) {
		return RangeSelector{All: true}, nil
	}
	if trimmed == "" {
		return RangeSelector{}, fmt.Errorf("%w: empty expression", ErrInvalidScanRange)
	}

	var spans []Span
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return RangeSelector{}, fmt.Errorf("%w: empty term in %q", ErrInvalidScanRange, expr)
		}

		bounds := strings.Split(part, "-")
		switch len(bounds) {
		case 1:
			n, err := parseScanNumber(bounds[0])
			if err != nil {
				return RangeSelector{}, err
			}
			spans = append(spans, Span{Lo: n, Hi: n})
		case 2:
			start, err := parseScanNumber(bounds[0])
			if err != nil {
				return RangeSelector{}, err
			}
			end, err := parseScanNumber(bounds[1])
			if err != nil {
				return RangeSelector{}, err
			}
			if start <= end {
				spans = append(spans, Span{Lo: start, Hi: end})
			}
		default:
			return RangeSelector{}, fmt.Errorf("%w: term %q", ErrInvalidScanRange, part)
		}
	}

	return RangeSelector{Spans: mergeSpans(spans)}, nil
}

func parseScanNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, fmt.Errorf("%w: %q is not a scan number", ErrInvalidScanRange, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a scan number", ErrInvalidScanRange, s)
	}
	return n, nil
}

func mergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Lo < spans[j].Lo })

	merged := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Lo <= last.Hi+1 {
			if s.Hi > last.Hi {
				last.Hi = s.Hi
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Contains reports whether the selector requests scan
func (s RangeSelector) Contains(scan int) bool {
	if s.All {
		return true
	}
	i := sort.Search(len(s.Spans), func(i int) bool { return s.Spans[i].Hi >= scan })
	return i < len(s.Spans) && s.Spans[i].Lo <= scan
}

// String renders the selector in canonical form
func (s RangeSelector) String() string {
	if s.All {
		return AllScans
	}
	parts := make([]string, len(s.Spans))
	for i, span := range s.Spans {
		parts[i] = span.String()
	}
	return strings.Join(parts, ",")
}

// Intersect returns the requested scans present in available. For "all" the
// available set is returned in its own order, otherwise the result is sorted.
func (s RangeSelector) Intersect(available domain.ScanSet) domain.ScanSet {
	if s.All {
		out := make(domain.ScanSet, len(available))
		copy(out, available)
		return out
	}

	out := domain.ScanSet{}
	seen := make(map[int]struct{}, len(available))
	for _, scan := range available {
		if _, dup := seen[scan]; dup {
			continue
		}
		seen[scan] = struct{}{}
		if s.Contains(scan) {
			out = append(out, scan)
		}
	}
	sort.Ints(out)
	return out
}

// Missing returns the requested scans absent from available as sorted spans.
// It is always empty for "all".
func (s RangeSelector) Missing(available domain.ScanSet) []Span {
	if s.All {
		return nil
	}
	present := available.Sorted()

	var out []Span
	for _, span := range s.Spans {
		next := span.Lo
		for _, scan := range present {
			if scan < span.Lo || scan > span.Hi {
				continue
			}
			if scan > next {
				out = append(out, Span{Lo: next, Hi: scan - 1})
			}
			if scan >= next {
				next = scan + 1
			}
		}
		if next <= span.Hi {
			out = append(out, Span{Lo: next, Hi: span.Hi})
		}
	}
	return out
}

// ParseScanRange parses expr and intersects it with available. On a parse
// error the selection is empty.
func ParseScanRange(expr string, available domain.ScanSet) (domain.ScanSet, error) {
	sel, err := ParseRangeSelector(expr)
	if err != nil {
		return domain.ScanSet{}, err
	}
	return sel.Intersect(available), nil
}

// ScansOf lists the distinct scan identifiers of a table in first-encountered
// order. Tables without a Scan column hold the single scan 1. Empty cells are
// skipped; fractional values fail with ErrNonNumericColumn.
func ScansOf(table *domain.RawTable) (domain.ScanSet, error) {
	col, ok := table.Column(ColumnScan)
	if !ok {
		return domain.ScanSet{1}, nil
	}
	if !col.Numeric {
		return nil, fmt.Errorf("%w: %s", ErrNonNumericColumn, ColumnScan)
	}

	scans := domain.ScanSet{}
	seen := make(map[int]struct{})
	for _, v := range col.Floats {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %s value %g is not a whole number", ErrNonNumericColumn, ColumnScan, v)
		}
		n := int(v)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		scans = append(scans, n)
	}
	return scans, nil
}

// FormatSpans renders spans as "1-3, 5"
func FormatSpans(spans []Span) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
