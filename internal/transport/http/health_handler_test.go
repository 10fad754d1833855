package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/internal/config"
	"voltweb/internal/services"
	"voltweb/internal/shared/testutil"
)

type fixedClients int

func (c fixedClients) ClientCount() int { return int(c) }

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	paths := config.NewPaths(t.TempDir(), config.PathsConfig{})

	tests := []struct {
		name           string
		clients        services.ClientCounter
		path           string
		expectedStatus int
		expectedState  string
	}{
		{"health", fixedClients(2), "/", http.StatusOK, "ok"},
		{"live", fixedClients(0), "/live", http.StatusOK, "alive"},
		{"ready", fixedClients(1), "/ready", http.StatusOK, "ready"},
		{"not ready without hub", nil, "/ready", http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewHealthService("1.2.3", "", "", paths, tt.clients, logger)
			h := NewHealthHandler(svc, logger).Routes()

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body services.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedState, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
		})
	}
}

func TestHealthHandler_VersionAndStats(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewHealthService("1.2.3", "2026-01-01", "abc", nil, fixedClients(3), logger)
	h := NewHealthHandler(svc, logger)

	w := httptest.NewRecorder()
	h.Version(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var version map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &version))
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "abc", version["build_id"])

	w = httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 3, stats["websocket_clients"])
}
