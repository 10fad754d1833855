package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apierrors "voltweb/internal/errors"
	"voltweb/pkg/contracts/domain"
)

// Input is one uploaded file. Err carries a failure to load the table, which
// is reported for that file without stopping the batch.
type Input struct {
	Name  string
	Table *domain.RawTable
	Err   error
}

// Processor runs the classification and extraction pipeline over a batch
type Processor struct {
	opts      ProcessingOptions
	palette   []domain.ColorToken
	extractor *Extractor
	composer  *Composer
	sink      EventSink
	logger    *slog.Logger
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithEventSink sets the progress event receiver
func WithEventSink(sink EventSink) ProcessorOption {
	return func(p *Processor) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithPalette overrides the series palette
func WithPalette(palette []domain.ColorToken) ProcessorOption {
	return func(p *Processor) {
		if len(palette) > 0 {
			p.palette = palette
		}
	}
}

// NewProcessor creates a batch processor
func NewProcessor(opts ProcessingOptions, logger *slog.Logger, options ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		opts:      opts,
		palette:   DefaultPalette,
		extractor: NewExtractor(opts, logger),
		composer:  NewComposer(opts),
		sink:      NopSink{},
		logger:    logger.With(slog.String("component", "processor")),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Options returns the processing options of the processor
func (p *Processor) Options() ProcessingOptions {
	return p.opts
}

// ProcessBatch processes every input in order. Per-file failures become
// diagnostics and never abort the batch. Colors are assigned by a fresh
// assigner, so identical inputs always yield identical colors.
func (p *Processor) ProcessBatch(ctx context.Context, inputs []Input, scanRange string) *domain.BatchResult {
	result := &domain.BatchResult{
		ID:          uuid.New().String(),
		ScanRange:   scanRange,
		Files:       make([]domain.FileResult, 0, len(inputs)),
		Diagnostics: []domain.Diagnostic{},
		StartedAt:   time.Now(),
	}

	p.logger.InfoContext(ctx, "processing batch",
		slog.String("batch_id", result.ID),
		slog.Int("files", len(inputs)),
		slog.String("scan_range", scanRange))
	p.sink.BatchStarted(ctx, result.ID, len(inputs))

	colors := NewColorAssigner(p.palette, len(inputs))
	perFile := make([][]domain.Series, 0, len(inputs))

	for i, in := range inputs {
		file, diags := p.processFile(ctx, i, in, scanRange, colors)
		result.Files = append(result.Files, file)
		result.Diagnostics = append(result.Diagnostics, diags...)
		perFile = append(perFile, file.Series)
		p.sink.FileProcessed(ctx, result.ID, file, diags)
	}

	result.Combined = p.composer.Compose(perFile)
	result.Duration = time.Since(result.StartedAt)

	p.logger.InfoContext(ctx, "batch processed",
		slog.String("batch_id", result.ID),
		slog.Int("succeeded", result.Succeeded()),
		slog.Int("series", len(result.Combined.Series)),
		slog.Int("diagnostics", len(result.Diagnostics)),
		slog.Duration("duration", result.Duration))
	p.sink.BatchCompleted(ctx, result)

	return result
}

func (p *Processor) processFile(ctx context.Context, index int, in Input, scanRange string, colors *ColorAssigner) (file domain.FileResult, diags []domain.Diagnostic) {
	file = domain.FileResult{
		Index:     index,
		Name:      in.Name,
		Technique: domain.TechniqueUnknown,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "panic while processing file",
				slog.String("file", in.Name),
				slog.Any("panic", r))
			file.Series, file.Plot, file.Failed = nil, nil, true
			diags = append(diags, failureDiagnostic(in.Name, domain.KindExtractionError, fmt.Errorf("%v", r)))
		}
	}()

	if in.Err != nil || in.Table == nil {
		err := in.Err
		if err == nil {
			err = errors.New("no data")
		}
		p.logger.WarnContext(ctx, "file could not be loaded", slog.String("file", in.Name), slog.Any("error", err))
		file.Failed = true
		return file, []domain.Diagnostic{failureDiagnostic(in.Name, domain.KindReadError, err)}
	}

	file.Technique = Classify(in.Table)
	if file.Technique == domain.TechniqueUnknown {
		err := apierrors.NewUnknownTechniqueError(in.Name, ErrUnknownTechnique)
		p.logger.WarnContext(ctx, "skipping file with unknown format",
			slog.String("file", in.Name),
			slog.Any("columns", in.Table.ColumnNames()),
			slog.Any("error", err))
		file.Failed = true
		return file, []domain.Diagnostic{{
			File:     in.Name,
			Severity: domain.SeverityError,
			Kind:     kindOf(err),
			Message:  fmt.Sprintf("Skipping %s: Unknown file format.", in.Name),
		}}
	}

	extracted, err := p.extractor.Extract(in.Table, file.Technique, in.Name, scanRange)
	if err != nil {
		p.logger.WarnContext(ctx, "extraction failed",
			slog.String("file", in.Name),
			slog.String("technique", file.Technique.String()),
			slog.Any("error", err))
		file.Failed = true
		return file, []domain.Diagnostic{failureDiagnostic(in.Name, kindOf(err), err)}
	}

	for i := range extracted.Series {
		s := &extracted.Series[i]
		s.FileIndex = index
		s.Color = colors.Assign(index, s.Scan)
	}

	file.Scans = extracted.Available
	file.Series = extracted.Series
	plot := p.composer.ComposeSingle(in.Name, file.Technique, extracted.Series)
	file.Plot = &plot

	return file, extracted.Diagnostics
}

func kindOf(err error) domain.DiagnosticKind {
	switch t, _ := apierrors.TypeOf(err); t {
	case apierrors.ErrTypeParsing:
		return domain.KindParseError
	case apierrors.ErrTypeUnsupportedTechnique:
		return domain.KindUnsupportedTechnique
	case apierrors.ErrTypeUnknownTechnique:
		return domain.KindUnknownTechnique
	case apierrors.ErrTypeExport:
		return domain.KindExportError
	default:
		return domain.KindExtractionError
	}
}

func failureDiagnostic(file string, kind domain.DiagnosticKind, err error) domain.Diagnostic {
	msg := err.Error()
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
		if kind != domain.KindParseError && appErr.Cause != nil {
			msg = fmt.Sprintf("%s (%v)", appErr.Message, appErr.Cause)
		}
	}
	return domain.Diagnostic{
		File:     file,
		Severity: domain.SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf("Error processing %s: %s", file, msg),
	}
}
