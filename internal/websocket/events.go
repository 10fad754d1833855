package websocket

import (
	"context"

	"voltweb/internal/infrastructure"
	"voltweb/pkg/contracts/domain"
)

// BatchStartedEvent is the payload of batch:started
type BatchStartedEvent struct {
	BatchID string `json:"batch_id"`
	Files   int    `json:"files"`
}

// FileProcessedEvent is the payload of file:processed
type FileProcessedEvent struct {
	BatchID     string              `json:"batch_id"`
	Index       int                 `json:"index"`
	Name        string              `json:"name"`
	Technique   string              `json:"technique"`
	Scans       domain.ScanSet      `json:"scans,omitempty"`
	Series      int                 `json:"series"`
	Failed      bool                `json:"failed"`
	Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
}

// BatchCompletedEvent is the payload of batch:completed
type BatchCompletedEvent struct {
	BatchID     string              `json:"batch_id"`
	Files       int                 `json:"files"`
	Series      int                 `json:"series"`
	DurationMS  int64               `json:"duration_ms"`
	Diagnostics []domain.Diagnostic `json:"diagnostics,omitempty"`
}

// EventSink publishes batch progress to every hub client
type EventSink struct {
	hub *Hub
}

// NewEventSink creates a sink broadcasting on hub
func NewEventSink(hub *Hub) *EventSink {
	return &EventSink{hub: hub}
}

func (s *EventSink) BatchStarted(ctx context.Context, batchID string, files int) {
	s.hub.BroadcastWithTrace(TypeBatchStarted, BatchStartedEvent{
		BatchID: batchID,
		Files:   files,
	}, infrastructure.GetTraceID(ctx))
}

func (s *EventSink) FileProcessed(ctx context.Context, batchID string, file domain.FileResult, diagnostics []domain.Diagnostic) {
	s.hub.BroadcastWithTrace(TypeFileProcessed, FileProcessedEvent{
		BatchID:     batchID,
		Index:       file.Index,
		Name:        file.Name,
		Technique:   file.Technique.String(),
		Scans:       file.Scans,
		Series:      len(file.Series),
		Failed:      file.Failed,
		Diagnostics: diagnostics,
	}, infrastructure.GetTraceID(ctx))
}

func (s *EventSink) BatchCompleted(ctx context.Context, result *domain.BatchResult) {
	if result == nil {
		return
	}
	s.hub.BroadcastWithTrace(TypeBatchCompleted, BatchCompletedEvent{
		BatchID:     result.ID,
		Files:       len(result.Files),
		Series:      len(result.Combined.Series),
		DurationMS:  result.Duration.Milliseconds(),
		Diagnostics: result.Diagnostics,
	}, infrastructure.GetTraceID(ctx))
}
