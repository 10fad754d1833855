package http

import (
	"net/http"
	"strconv"
)

// ProcessRequest holds the form fields of POST /api/process
type ProcessRequest struct {
	ScanRange string `form:"scan_range" validate:"omitempty,max=200"`
}

// ExportRequest holds the form fields of POST /api/export
type ExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=csv xlsx"`
}

// PreviewRequest holds the form fields of POST /api/preview
type PreviewRequest struct {
	Rows int `form:"rows" validate:"gte=0,lte=100"`
}

// bindProcess reads a ProcessRequest from a parsed form
func bindProcess(r *http.Request) ProcessRequest {
	return ProcessRequest{ScanRange: r.FormValue("scan_range")}
}

func bindExport(r *http.Request) ExportRequest {
	return ExportRequest{Format: r.FormValue("format")}
}

// bindPreview keeps a malformed rows value as -1 so validation rejects it
func bindPreview(r *http.Request) PreviewRequest {
	raw := r.FormValue("rows")
	if raw == "" {
		return PreviewRequest{}
	}
	rows, err := strconv.Atoi(raw)
	if err != nil {
		rows = -1
	}
	return PreviewRequest{Rows: rows}
}
