package testutil

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoHeader = errors.New("no header row")

func TestBufferedSlogHandler_KeepsBoundAttrs(t *testing.T) {
	logger, handler := NewTestLogger(t)
	processor := logger.With(slog.String("component", "processor"))

	processor.Warn("file could not be loaded",
		slog.String("file", "broken.csv"),
		slog.Any("error", fmt.Errorf("read: %w", errNoHeader)))
	processor.WithGroup("batch").Info("batch processed", slog.Int("files", 2))

	records := handler.GetRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "processor", records[0].Attrs["component"])
	assert.Equal(t, "broken.csv", records[0].File())
	assert.Equal(t, int64(2), records[1].Attrs["batch.files"])
	assert.Empty(t, records[1].File())

	AssertLogAttr(t, handler, "component", "processor")
	AssertFileLogged(t, handler, slog.LevelWarn, "broken.csv", "could not be loaded")
	AssertFileError(t, handler, "broken.csv", errNoHeader)
}

func TestBufferedSlogHandler_FileRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Debug("extracted CV series", slog.String("file", "cv.csv"), slog.Int("series", 3))
	logger.Warn("skipping file with unknown format", slog.String("file", "notes.csv"))
	logger.Info("batch processed", slog.Int("files", 2))

	cv := handler.FileRecords("cv.csv")
	require.Len(t, cv, 1)
	assert.Equal(t, slog.LevelDebug, cv[0].Level)
	assert.Len(t, handler.FileRecords("notes.csv"), 1)
	assert.Empty(t, handler.FileRecords("absent.csv"))

	assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
	AssertLogContains(t, handler, slog.LevelInfo, "batch processed")
	AssertNoErrors(t, handler)
}

func TestBufferedSlogHandler_ConcurrentFiles(t *testing.T) {
	logger, handler := NewTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.With(slog.Int("worker", n)).Info("file processed", slog.String("file", fmt.Sprintf("f%d.csv", n)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, handler.GetRecords(), 8)
	for i := 0; i < 8; i++ {
		assert.Len(t, handler.FileRecords(fmt.Sprintf("f%d.csv", i)), 1)
	}
}
