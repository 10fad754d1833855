package dataprocessing

import (
	"context"

	"voltweb/pkg/contracts/domain"
)

// EventSink receives progress notifications while a batch runs
type EventSink interface {
	BatchStarted(ctx context.Context, batchID string, files int)
	FileProcessed(ctx context.Context, batchID string, file domain.FileResult, diagnostics []domain.Diagnostic)
	BatchCompleted(ctx context.Context, result *domain.BatchResult)
}

// NopSink discards all events
type NopSink struct{}

func (NopSink) BatchStarted(context.Context, string, int) {}

func (NopSink) FileProcessed(context.Context, string, domain.FileResult, []domain.Diagnostic) {}

func (NopSink) BatchCompleted(context.Context, *domain.BatchResult) {}
