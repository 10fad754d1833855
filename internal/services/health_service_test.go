package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/internal/config"
	"voltweb/internal/shared/testutil"
	"voltweb/pkg/contracts"
)

func TestHealthService_HealthAndLiveness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("0.3.0", "", "", nil, nil, logger)

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "0.3.0", health.Version)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_Readiness(t *testing.T) {
	tmp := t.TempDir()
	paths := config.NewPaths(tmp, config.PathsConfig{})

	clients := &MockClientCounter{}
	clients.On("ClientCount").Return(2)

	tests := []struct {
		name    string
		paths   *config.Paths
		clients ClientCounter
		want    string
	}{
		{"all ready", paths, clients, "ready"},
		{"no hub", paths, nil, "not_ready"},
		{"streaming only", nil, clients, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("0.3.0", "", "", tt.paths, tt.clients, logger)
			assert.Equal(t, tt.want, hs.ReadinessCheck(context.Background()).Status)
		})
	}

	entries, err := os.ReadDir(paths.ExportsDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "readiness probe must not leave files behind")
}

func TestHealthService_ReadinessUnwritable(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	clients := &MockClientCounter{}
	clients.On("ClientCount").Return(0)

	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("0.3.0", "", "", config.NewPaths(tmp, config.PathsConfig{}), clients, logger)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	testutil.AssertLogAttr(t, handler, "service", "exports")
}

func TestHealthService_VersionAndStats(t *testing.T) {
	tmp := t.TempDir()
	paths := config.NewPaths(tmp, config.PathsConfig{})
	require.NoError(t, paths.EnsureDirectories())
	require.NoError(t, os.WriteFile(filepath.Join(paths.ExportsDir, "processed_a.csv"), []byte("a"), 0644))

	clients := &MockClientCounter{}
	clients.On("ClientCount").Return(3)

	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("0.3.0", "2026-01-01", "abc123", paths, clients, logger)

	version := hs.Version()
	assert.Equal(t, "0.3.0", version["version"])
	assert.Equal(t, "2026-01-01", version["build_time"])
	assert.Equal(t, "abc123", version["build_id"])
	assert.Equal(t, contracts.APIVersion, version["api_version"])
	assert.Equal(t, contracts.ExportFormatVersion, version["export_format"])

	stats := hs.SystemStats(context.Background())
	assert.Equal(t, 3, stats.WebSocketClients)
	assert.Equal(t, 1, stats.ExportFiles)
	assert.Positive(t, stats.Goroutines)

	detailed := hs.GetDetailedHealth(context.Background())
	assert.Contains(t, detailed, "readiness")
	assert.Contains(t, detailed, "stats")
	clients.AssertExpectations(t)
}
