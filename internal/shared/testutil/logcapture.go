package testutil

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call. Attrs holds the record's attributes
// merged with those bound through Logger.With.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// File returns the input file the record is about, if any
func (r LogRecord) File() string {
	file, _ := r.Attrs["file"].(string)
	return file
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler captures records for a logger and every logger
// derived from it, so component-scoped loggers land in the same buffer.
type BufferedSlogHandler struct {
	store  *logStore
	bound  []slog.Attr
	prefix string
	t      *testing.T
}

// NewBufferedSlogHandler creates a handler that also echoes records to t.Logf
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{store: &logStore{}, t: t}
}

// NewTestLogger creates a logger with a buffered handler for testing
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}

// Enabled implements slog.Handler; every level is captured
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.bound)+r.NumAttrs())
	for _, a := range h.bound {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.bound = slices.Clip(h.bound)
	for _, a := range attrs {
		child.bound = append(child.bound, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &child
}

// WithGroup implements slog.Handler; grouped keys are flattened as "group.key"
func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	child.prefix = h.prefix + name + "."
	return &child
}

// GetRecords returns a copy of every captured record
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return slices.Clone(h.store.records)
}

// GetRecordsByLevel returns the captured records at exactly level
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	var filtered []LogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FileRecords returns the records logged about one input file
func (h *BufferedSlogHandler) FileRecords(file string) []LogRecord {
	var filtered []LogRecord
	for _, r := range h.GetRecords() {
		if r.File() == file {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsAttr reports whether any record carries key with exactly value
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.GetRecords() {
		if val, ok := r.Attrs[key]; ok && val == value {
			return true
		}
	}
	return false
}

// AssertLogContains checks that a record at level contains message
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	records := handler.GetRecordsByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("Expected log message not found at level %s: %q", level, message)
	dump(t, records)
}

// AssertLogAttr checks that some record carries key=expectedValue
func AssertLogAttr(t *testing.T, handler *BufferedSlogHandler, key string, expectedValue any) {
	t.Helper()

	if !handler.ContainsAttr(key, expectedValue) {
		t.Errorf("Expected log attribute not found: %s=%v", key, expectedValue)
		dump(t, handler.GetRecords())
	}
}

// AssertFileLogged checks that a record at level about file contains message
func AssertFileLogged(t *testing.T, handler *BufferedSlogHandler, level slog.Level, file, message string) {
	t.Helper()

	records := handler.FileRecords(file)
	for _, r := range records {
		if r.Level == level && strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("Expected %s log for %s not found: %q", level, file, message)
	dump(t, records)
}

// AssertFileError checks that a record about file carries an "error"
// attribute matching target under errors.Is. The error must be logged with
// slog.Any so it survives as a value rather than a string.
func AssertFileError(t *testing.T, handler *BufferedSlogHandler, file string, target error) {
	t.Helper()

	records := handler.FileRecords(file)
	for _, r := range records {
		if err, ok := r.Attrs["error"].(error); ok && errors.Is(err, target) {
			return
		}
	}

	t.Errorf("Expected error %q logged for %s", target, file)
	dump(t, records)
}

// AssertNoErrors checks that no error-level records were captured
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	if errs := handler.GetRecordsByLevel(slog.LevelError); len(errs) > 0 {
		t.Errorf("Unexpected error logs found:")
		dump(t, errs)
	}
}

func dump(t *testing.T, records []LogRecord) {
	t.Helper()
	for _, r := range records {
		t.Logf("  - [%s] %s: %v", r.Level, r.Message, r.Attrs)
	}
}
