package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/internal/config"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLogger_File(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: logFile})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("batch processed", "files", 2)
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entries := decodeLines(t, content)
	require.Len(t, entries, 1)
	assert.Equal(t, "batch processed", entries[0]["msg"])
	assert.Equal(t, float64(2), entries[0]["files"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Same(t, logger, GetLogger())
}

func TestTraceHandler_InjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LoggingConfig{Level: "debug"})

	logger.InfoContext(WithTraceID(context.Background(), "trace-123"), "with trace")

	reqCtx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-9")
	logger.With("component", "test").InfoContext(reqCtx, "with request id")

	logger.InfoContext(context.Background(), "without trace")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 3)
	assert.Equal(t, "trace-123", entries[0]["trace_id"])
	assert.Equal(t, "req-9", entries[1]["trace_id"])
	assert.Equal(t, "test", entries[1]["component"])
	assert.NotContains(t, entries[2], "trace_id")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LoggingConfig{Level: "warn"})

	logger.Info("dropped")
	logger.Warn("kept")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, ctx, EnsureTraceID(ctx))

	assert.Empty(t, GetTraceID(context.Background()))
	assert.NotNil(t, LoggerWithContext(ctx))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter(&buf, config.LoggingConfig{})

	WithError(WithComponent(base, "exporter"), assert.AnError).Error("failed")
	assert.Same(t, base, WithError(base, nil))

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	assert.Equal(t, "exporter", entries[0]["component"])
	assert.Equal(t, assert.AnError.Error(), entries[0]["error"])
}
