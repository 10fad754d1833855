package http

import (
	"context"

	"voltweb/internal/dataprocessing"
	"voltweb/internal/exporter"
	"voltweb/internal/services"
	"voltweb/internal/visualization"
	"voltweb/pkg/contracts/domain"
)

// VoltammetryService is the part of services.VoltammetryService the
// handlers depend on
type VoltammetryService interface {
	ProcessBatch(ctx context.Context, sources []dataprocessing.Source, scanRange string) (*domain.BatchResult, error)
	CachedPlot() (*domain.CombinedPlot, error)
	FilePlot(index int) (*domain.CombinedPlot, error)
	ClearPlot() bool
	RenderPlot(ctx context.Context, format visualization.ImageFormat) ([]byte, error)
	Export(ctx context.Context, sources []dataprocessing.Source, format exporter.Format) (*exporter.Prepared, error)
	Preview(ctx context.Context, sources []dataprocessing.Source, rows int) ([]services.FilePreview, error)
}

var _ VoltammetryService = (*services.VoltammetryService)(nil)
