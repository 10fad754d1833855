package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"voltweb/pkg/contracts/domain"
)

// BusinessMetrics holds the application metrics
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	FilesProcessed metric.Int64Counter
	SeriesEmitted  metric.Int64Counter
	Diagnostics    metric.Int64Counter
	BatchDuration  metric.Float64Histogram

	ExportsProduced metric.Int64Counter
	ExportDuration  metric.Float64Histogram
	PlotsRendered   metric.Int64Counter
}

// CreateBusinessMetrics registers the application instruments on meter.
// A nil meter yields no-op instruments.
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	var (
		m   BusinessMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests"},
		{&m.FilesProcessed, "voltammetry_files_processed_total", "Files processed, by technique and status"},
		{&m.SeriesEmitted, "voltammetry_series_emitted_total", "Series emitted into combined plots"},
		{&m.Diagnostics, "voltammetry_diagnostics_total", "Diagnostics reported, by kind"},
		{&m.ExportsProduced, "voltammetry_exports_total", "Export artifacts produced, by format"},
		{&m.PlotsRendered, "voltammetry_plots_rendered_total", "Plot images rendered, by format"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds"},
		{&m.BatchDuration, "voltammetry_batch_duration_seconds", "Batch processing duration in seconds"},
		{&m.ExportDuration, "voltammetry_export_duration_seconds", "Export duration in seconds"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, err
		}
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordBatch records the outcome of one processed batch
func (m *BusinessMetrics) RecordBatch(ctx context.Context, result *domain.BatchResult) {
	if m == nil || result == nil {
		return
	}

	for _, f := range result.Files {
		status := "success"
		if f.Failed {
			status = "failure"
		}
		m.FilesProcessed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("technique", f.Technique.String()),
			attribute.String("status", status),
		))
	}
	for _, d := range result.Diagnostics {
		m.Diagnostics.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(d.Kind))))
	}
	m.SeriesEmitted.Add(ctx, int64(len(result.Combined.Series)))
	m.BatchDuration.Record(ctx, result.Duration.Seconds())
}

// RecordExport records one export artifact
func (m *BusinessMetrics) RecordExport(ctx context.Context, format string, files int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("format", format), attribute.String("status", status))
	m.ExportsProduced.Add(ctx, 1, attrs)
	m.ExportDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRender records one rendered plot image
func (m *BusinessMetrics) RecordRender(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.PlotsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
