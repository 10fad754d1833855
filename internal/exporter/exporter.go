package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"voltweb/internal/dataprocessing"
	apierrors "voltweb/internal/errors"
	"voltweb/pkg/contracts/domain"
)

// ErrNothingToExport is returned when no input could be reshaped
var ErrNothingToExport = errors.New("none of the files could be exported")

// Artifact names for multi-file exports
const (
	ArchiveName  = "files.zip"
	WorkbookName = "data.xlsx"
)

// Options configures an Exporter
type Options struct {
	MissingValue string
	BOMPrefix    bool
	Workers      int
	FilePrefix   string
}

// Exporter reshapes batches of CV tables into wide exports
type Exporter struct {
	options Options
	logger  *slog.Logger
}

// New creates an exporter
func New(options Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}
	return &Exporter{
		options: options,
		logger:  logger.With(slog.String("component", "exporter")),
	}
}

// Prepared holds the reshaped tables of a batch, ready to be written
type Prepared struct {
	Entries     []Entry
	Diagnostics []domain.Diagnostic
	options     Options
}

type prepared struct {
	entry *Entry
	diag  *domain.Diagnostic
}

// Prepare reshapes every input in parallel. Inputs that cannot be exported
// become diagnostics; entries and diagnostics keep input order. When nothing
// is exportable the returned error wraps ErrNothingToExport and Prepared
// still carries the diagnostics.
func (e *Exporter) Prepare(ctx context.Context, inputs []dataprocessing.Input) (*Prepared, error) {
	results := make([]prepared, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.prepareOne(in)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export cancelled: %w", err)
	}

	p := &Prepared{options: e.options, Diagnostics: []domain.Diagnostic{}}
	for _, r := range results {
		if r.entry != nil {
			p.Entries = append(p.Entries, *r.entry)
		}
		if r.diag != nil {
			p.Diagnostics = append(p.Diagnostics, *r.diag)
		}
	}

	e.logger.InfoContext(ctx, "export prepared",
		slog.Int("files", len(inputs)),
		slog.Int("exported", len(p.Entries)),
		slog.Int("diagnostics", len(p.Diagnostics)))

	if len(p.Entries) == 0 {
		return p, apierrors.NewExportError("nothing to export", ErrNothingToExport)
	}
	return p, nil
}

func (e *Exporter) prepareOne(in dataprocessing.Input) prepared {
	if in.Err != nil || in.Table == nil {
		err := in.Err
		if err == nil {
			err = errors.New("no data")
		}
		return prepared{diag: &domain.Diagnostic{
			File:     in.Name,
			Severity: domain.SeverityError,
			Kind:     domain.KindReadError,
			Message:  fmt.Sprintf("Error processing %s: %v", in.Name, err),
		}}
	}

	technique := dataprocessing.Classify(in.Table)
	wide, err := dataprocessing.ExportWide(in.Table, technique)
	if err != nil {
		kind := domain.KindExportError
		reason := err.Error()
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) {
			reason = appErr.Message
			if appErr.Cause != nil {
				reason = fmt.Sprintf("%s (%v)", appErr.Message, appErr.Cause)
			}
		}
		if technique != domain.TechniqueCV {
			kind = domain.KindUnsupportedTechnique
			reason = fmt.Sprintf("only CV files can be exported (detected %s)", technique)
		}
		e.logger.Warn("file not exported",
			slog.String("file", in.Name),
			slog.String("technique", technique.String()),
			slog.Any("error", err))
		return prepared{diag: &domain.Diagnostic{
			File:     in.Name,
			Severity: domain.SeverityError,
			Kind:     kind,
			Message:  fmt.Sprintf("Skipping %s: %s", in.Name, reason),
		}}
	}

	return prepared{entry: &Entry{Name: e.options.FilePrefix + in.Name, Table: wide}}
}

// FileName returns the download name of the artifact
func (p *Prepared) FileName(format Format) string {
	switch {
	case format == FormatXLSX:
		return p.options.FilePrefix + WorkbookName
	case len(p.Entries) == 1:
		return ensureExt(p.Entries[0].Name, ".csv")
	default:
		return p.options.FilePrefix + ArchiveName
	}
}

// ContentType returns the MIME type of the artifact
func (p *Prepared) ContentType(format Format) string {
	switch {
	case format == FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case len(p.Entries) == 1:
		return "text/csv; charset=utf-8"
	default:
		return "application/zip"
	}
}

// Write writes the artifact: a single CSV for one entry, a zip of CSVs for
// several, or a workbook for FormatXLSX
func (p *Prepared) Write(w io.Writer, format Format) error {
	if len(p.Entries) == 0 {
		return ErrNothingToExport
	}

	options := WriteOptions{MissingValue: p.options.MissingValue, BOMPrefix: p.options.BOMPrefix}
	switch {
	case format == FormatXLSX:
		return WriteWorkbook(w, p.Entries, options)
	case len(p.Entries) == 1:
		return WriteWide(w, p.Entries[0].Table, options)
	default:
		return WriteArchive(w, p.Entries, options)
	}
}

// ensureExt keeps names like processed_scan.txt readable as CSV downloads
func ensureExt(name, ext string) string {
	if strings.EqualFold(path.Ext(name), ext) {
		return name
	}
	return name + ext
}
