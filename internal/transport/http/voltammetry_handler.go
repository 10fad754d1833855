package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "voltweb/internal/errors"
	"voltweb/internal/exporter"
	"voltweb/internal/middleware"
	"voltweb/internal/validation"
	"voltweb/internal/visualization"
)

// SkippedFilesHeader reports how many uploads an export left out
const SkippedFilesHeader = "X-Skipped-Files"

// VoltammetryHandler serves the processing, plot and export endpoints
type VoltammetryHandler struct {
	service      VoltammetryService
	uploads      *validation.FileValidator
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	maxMemory    int64
}

// NewVoltammetryHandler creates the handler
func NewVoltammetryHandler(service VoltammetryService, uploads *validation.FileValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *VoltammetryHandler {
	return &VoltammetryHandler{
		service:      service,
		uploads:      uploads,
		validator:    middleware.NewValidator(logger),
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "voltammetry_handler")),
		maxMemory:    defaultMultipartMemory,
	}
}

// RegisterRoutes registers the API routes on r, which is mounted under /api
func (h *VoltammetryHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
		r.Post("/process", h.Process)
		r.Post("/export", h.Export)
		r.Post("/preview", h.Preview)
	})

	r.Route("/plot", func(r chi.Router) {
		r.Get("/", h.GetPlot)
		r.Delete("/", h.ClearPlot)
		r.Get("/image", h.GetPlotImage)
		r.Get("/files/{index}", h.GetFilePlot)
	})
}

// Process handles POST /api/process
func (h *VoltammetryHandler) Process(w http.ResponseWriter, r *http.Request) {
	sources, err := parseUploads(r, h.uploads, h.maxMemory)
	defer cleanupUploads(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := bindProcess(r)
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.ProcessBatch(r.Context(), sources, req.ScanRange)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "batch processed",
		slog.String("batch_id", result.ID),
		slog.Int("files", len(result.Files)),
		slog.Int("diagnostics", len(result.Diagnostics)))

	render.JSON(w, r, result)
}

// GetPlot handles GET /api/plot
func (h *VoltammetryHandler) GetPlot(w http.ResponseWriter, r *http.Request) {
	plot, err := h.service.CachedPlot()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, plot)
}

// ClearPlot handles DELETE /api/plot
func (h *VoltammetryHandler) ClearPlot(w http.ResponseWriter, r *http.Request) {
	h.service.ClearPlot()
	w.WriteHeader(http.StatusNoContent)
}

// GetPlotImage handles GET /api/plot/image?format=png|svg
func (h *VoltammetryHandler) GetPlotImage(w http.ResponseWriter, r *http.Request) {
	name, ok := h.query.ValidateEnum(w, r, "format", []string{"png", "svg"}, "png")
	if !ok {
		return
	}
	format, err := visualization.ParseImageFormat(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	image, err := h.service.RenderPlot(r.Context(), format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(image)
}

// GetFilePlot handles GET /api/plot/files/{index}
func (h *VoltammetryHandler) GetFilePlot(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("index", "index must be a valid integer"))
		return
	}

	plot, err := h.service.FilePlot(index)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, plot)
}

// Export handles POST /api/export. One exportable file is returned as CSV,
// several as a zip of CSVs, and format=xlsx as one workbook.
func (h *VoltammetryHandler) Export(w http.ResponseWriter, r *http.Request) {
	sources, err := parseUploads(r, h.uploads, h.maxMemory)
	defer cleanupUploads(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := bindExport(r)
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	prepared, err := h.service.Export(r.Context(), sources, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := prepared.Write(&buf, format); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("failed to write export", err))
		return
	}

	w.Header().Set("Content-Type", prepared.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", prepared.FileName(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(SkippedFilesHeader, strconv.Itoa(len(prepared.Diagnostics)))
	w.Write(buf.Bytes())
}

// Preview handles POST /api/preview
func (h *VoltammetryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sources, err := parseUploads(r, h.uploads, h.maxMemory)
	defer cleanupUploads(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := bindPreview(r)
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	previews, err := h.service.Preview(r.Context(), sources, req.Rows)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"files": previews})
}
