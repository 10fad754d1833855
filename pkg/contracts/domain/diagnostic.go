package domain

// Severity ranks a per-file diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DiagnosticKind classifies what went wrong with a file
type DiagnosticKind string

const (
	KindReadError            DiagnosticKind = "read_error"
	KindParseError           DiagnosticKind = "parse_error"
	KindUnknownTechnique     DiagnosticKind = "unknown_technique"
	KindUnsupportedTechnique DiagnosticKind = "unsupported_technique"
	KindExtractionError      DiagnosticKind = "extraction_error"
	KindEmptyScanResult      DiagnosticKind = "empty_scan_result"
	KindMissingValues        DiagnosticKind = "missing_values"
	KindExportError          DiagnosticKind = "export_error"
)

// Diagnostic is a (filename, message) pair surfaced to the user
type Diagnostic struct {
	File     string         `json:"file"`
	Severity Severity       `json:"severity"`
	Kind     DiagnosticKind `json:"kind"`
	Message  string         `json:"message"`
}
