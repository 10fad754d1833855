package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"voltweb/internal/config"
	"voltweb/internal/dataprocessing"
	apierrors "voltweb/internal/errors"
	"voltweb/internal/exporter"
	"voltweb/internal/infrastructure"
	"voltweb/internal/visualization"
	"voltweb/internal/websocket"
	"voltweb/pkg/contracts/domain"
)

// DefaultPreviewRows is the number of rows returned per file by Preview
const DefaultPreviewRows = 10

// Notifier publishes state changes to connected clients
type Notifier interface {
	Broadcast(messageType string, data interface{})
}

// VoltammetryService processes uploaded batches and caches the latest result
type VoltammetryService struct {
	processor        *dataprocessing.Processor
	exporter         *exporter.Exporter
	renderer         *visualization.Renderer
	metrics          *infrastructure.BusinessMetrics
	notifier         Notifier
	sink             dataprocessing.EventSink
	loadWorkers      int
	defaultScanRange string
	logger           *slog.Logger

	mu   sync.RWMutex
	last *domain.BatchResult
}

// VoltammetryOption configures a VoltammetryService
type VoltammetryOption func(*VoltammetryService)

// WithEventSink receives batch progress events
func WithEventSink(sink dataprocessing.EventSink) VoltammetryOption {
	return func(s *VoltammetryService) { s.sink = sink }
}

// WithMetrics records batch, export and render metrics
func WithMetrics(m *infrastructure.BusinessMetrics) VoltammetryOption {
	return func(s *VoltammetryService) { s.metrics = m }
}

// WithNotifier announces cache changes
func WithNotifier(n Notifier) VoltammetryOption {
	return func(s *VoltammetryService) { s.notifier = n }
}

// NewVoltammetryService wires the pipeline, exporter and renderer from cfg
func NewVoltammetryService(cfg *config.Config, logger *slog.Logger, opts ...VoltammetryOption) *VoltammetryService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "voltammetry_service"))

	s := &VoltammetryService{
		loadWorkers:      cfg.Processing.LoadWorkers,
		defaultScanRange: cfg.Processing.DefaultScanRange,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	palette := make([]domain.ColorToken, 0, len(cfg.Processing.Palette))
	for _, c := range cfg.Processing.Palette {
		palette = append(palette, domain.ColorToken(c))
	}

	s.processor = dataprocessing.NewProcessor(cfg.ProcessingOptions(), logger,
		dataprocessing.WithEventSink(s.sink),
		dataprocessing.WithPalette(palette))
	s.exporter = exporter.New(exporter.Options{
		MissingValue: cfg.Export.MissingValue,
		BOMPrefix:    cfg.Export.BOMPrefix,
		Workers:      cfg.Export.Workers,
		FilePrefix:   cfg.Export.FilePrefix,
	}, logger)
	s.renderer = visualization.NewRenderer(cfg.Render.Width, cfg.Render.Height)

	return s
}

// ProcessBatch loads and processes sources with the given scan range and
// replaces the cached batch. An empty scan range uses the configured default.
// Per-file problems are reported as diagnostics in the result.
func (s *VoltammetryService) ProcessBatch(ctx context.Context, sources []dataprocessing.Source, scanRange string) (*domain.BatchResult, error) {
	if len(sources) == 0 {
		return nil, apierrors.ErrNoFilesUploaded
	}
	if strings.TrimSpace(scanRange) == "" {
		scanRange = s.defaultScanRange
	}

	inputs, err := dataprocessing.LoadInputs(ctx, sources, s.loadWorkers)
	if err != nil {
		return nil, err
	}

	result := s.processor.ProcessBatch(ctx, inputs, scanRange)
	s.metrics.RecordBatch(ctx, result)

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	return result, nil
}

// CachedBatch returns the most recent batch
func (s *VoltammetryService) CachedBatch() (*domain.BatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, apierrors.ErrNoPlot
	}
	return s.last, nil
}

// CachedPlot returns the combined plot of the most recent batch
func (s *VoltammetryService) CachedPlot() (*domain.CombinedPlot, error) {
	batch, err := s.CachedBatch()
	if err != nil {
		return nil, err
	}
	if batch.Combined.Empty() {
		return nil, apierrors.ErrNoPlot
	}
	plot := batch.Combined
	return &plot, nil
}

// FilePlot returns the per-file plot at index of the most recent batch
func (s *VoltammetryService) FilePlot(index int) (*domain.CombinedPlot, error) {
	batch, err := s.CachedBatch()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(batch.Files) {
		return nil, apierrors.NotFoundError(fmt.Sprintf("file %d", index))
	}
	file := batch.Files[index]
	if file.Plot == nil {
		return nil, apierrors.NotFoundError(fmt.Sprintf("plot for %s", file.Name))
	}
	return file.Plot, nil
}

// ClearPlot drops the cached batch. It reports whether one was cached.
func (s *VoltammetryService) ClearPlot() bool {
	s.mu.Lock()
	had := s.last != nil
	s.last = nil
	s.mu.Unlock()

	s.logger.Info("plot cache cleared", slog.Bool("had_plot", had))
	if s.notifier != nil {
		s.notifier.Broadcast(websocket.TypePlotCleared, map[string]bool{"had_plot": had})
	}
	return had
}

// RenderPlot renders the cached combined plot as an image
func (s *VoltammetryService) RenderPlot(ctx context.Context, format visualization.ImageFormat) ([]byte, error) {
	plot, err := s.CachedPlot()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, plot, format); err != nil {
		if errors.Is(err, visualization.ErrEmptyPlot) {
			return nil, apierrors.ErrNoPlot
		}
		s.logger.ErrorContext(ctx, "plot rendering failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apierrors.ErrRenderFailed, err)
	}

	s.metrics.RecordRender(ctx, string(format))
	return buf.Bytes(), nil
}

// Export reshapes the CV files among sources into a wide export. When no
// file is exportable the error carries the per-file diagnostics.
func (s *VoltammetryService) Export(ctx context.Context, sources []dataprocessing.Source, format exporter.Format) (*exporter.Prepared, error) {
	if len(sources) == 0 {
		return nil, apierrors.ErrNoFilesUploaded
	}

	inputs, err := dataprocessing.LoadInputs(ctx, sources, s.loadWorkers)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	prepared, err := s.exporter.Prepare(ctx, inputs)
	if err != nil {
		s.metrics.RecordExport(ctx, string(format), 0, time.Since(start), err)
		if errors.Is(err, exporter.ErrNothingToExport) && prepared != nil {
			return prepared, apierrors.ExportFailed(prepared.Diagnostics)
		}
		return nil, err
	}

	s.metrics.RecordExport(ctx, string(format), len(prepared.Entries), time.Since(start), nil)
	s.logger.InfoContext(ctx, "export prepared",
		slog.String("format", string(format)),
		slog.Int("entries", len(prepared.Entries)),
		slog.Int("skipped", len(prepared.Diagnostics)))

	return prepared, nil
}

// FilePreview summarizes one loaded file
type FilePreview struct {
	Name      string           `json:"name"`
	Technique domain.Technique `json:"technique"`
	Columns   []string         `json:"columns,omitempty"`
	RowCount  int              `json:"row_count"`
	Rows      [][]string       `json:"rows,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Preview loads sources and returns their headers, detected technique and
// first rows. rows <= 0 uses DefaultPreviewRows.
func (s *VoltammetryService) Preview(ctx context.Context, sources []dataprocessing.Source, rows int) ([]FilePreview, error) {
	if len(sources) == 0 {
		return nil, apierrors.ErrNoFilesUploaded
	}
	if rows <= 0 {
		rows = DefaultPreviewRows
	}

	inputs, err := dataprocessing.LoadInputs(ctx, sources, s.loadWorkers)
	if err != nil {
		return nil, err
	}

	previews := make([]FilePreview, len(inputs))
	for i, in := range inputs {
		previews[i] = previewOf(in, rows)
	}
	return previews, nil
}

func previewOf(in dataprocessing.Input, rows int) FilePreview {
	p := FilePreview{Name: in.Name, Technique: domain.TechniqueUnknown}
	if in.Err != nil || in.Table == nil {
		if in.Err != nil {
			p.Error = in.Err.Error()
		}
		return p
	}

	table := in.Table
	p.Technique = dataprocessing.Classify(table)
	p.Columns = table.ColumnNames()
	p.RowCount = table.Len()

	n := min(rows, p.RowCount)
	p.Rows = make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(table.Columns))
		for c := range table.Columns {
			row[c] = table.Columns[c].Strings[r]
		}
		p.Rows[r] = row
	}
	return p
}
