package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/internal/config"
	"voltweb/internal/infrastructure"
	"voltweb/internal/shared/testutil"
	ws "voltweb/internal/websocket"
	"voltweb/pkg/contracts/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Paths.BaseDir = t.TempDir()
	return cfg
}

func testOTelConfig() *infrastructure.OTelConfig {
	reg := promclient.NewRegistry()
	return &infrastructure.OTelConfig{
		ServiceName:    "voltweb-test",
		ServiceVersion: "v0.0.0",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
		Registerer:     reg,
		Gatherer:       reg,
	}
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}

	app, err := New(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)), testOTelConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Stop(ctx)
	})
	return app
}

func uploadRequest(t *testing.T, path string, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := uploadBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func uploadBody(t *testing.T, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serve(app *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestNew_WiresComponents(t *testing.T) {
	app := newTestApp(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.WebSocketHub)
	assert.NotNil(t, app.VoltammetryService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
	assert.DirExists(t, app.Paths.ExportsDir)
	assert.DirExists(t, app.Paths.LogsDir)
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/health", http.StatusOK},
		{"/api/health/live", http.StatusOK},
		{"/api/health/ready", http.StatusOK},
		{"/api/version", http.StatusOK},
		{"/api/stats", http.StatusOK},
		{"/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_ProcessPlotClear(t *testing.T) {
	app := newTestApp(t, nil)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/api/plot", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(app, uploadRequest(t, "/api/process", map[string]string{
		"cv.csv":      testutil.CVCSV(3, 3),
		"unknown.csv": testutil.UnknownCSV(2),
	}, map[string]string{"scan_range": "all"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var batch domain.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Len(t, batch.Files, 2)
	assert.NotEmpty(t, batch.Diagnostics)

	w = serve(app, httptest.NewRequest(http.MethodGet, "/api/plot", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var plot domain.CombinedPlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plot))
	assert.Len(t, plot.Series, 2)

	w = serve(app, httptest.NewRequest(http.MethodGet, "/api/plot/image?format=svg", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))

	w = serve(app, httptest.NewRequest(http.MethodDelete, "/api/plot", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(app, httptest.NewRequest(http.MethodGet, "/api/plot", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_UploadTooLarge(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadBytes = 256
	})

	w := serve(app, uploadRequest(t, "/api/process", map[string]string{
		"cv.csv": testutil.CVCSV(50),
	}, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", problem["error_code"])
	assert.Contains(t, problem["detail"], "256 bytes")
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t, nil)

	serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	w := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouter_CORSDisabled(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.EnableCORS = false
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://elsewhere.example")
	w := serve(app, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.AllowedOrigins = []string{"http://lab.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/process", nil)
	req.Header.Set("Origin", "http://lab.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(app, req)

	assert.Equal(t, "http://lab.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_StartBroadcastsBatchEvents(t *testing.T) {
	app := newTestApp(t, nil)

	errCh, err := app.Start(context.Background())
	require.NoError(t, err)

	base := "http://" + app.Addr()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+app.Addr()+config.WebSocketEndpoint, nil)
	require.NoError(t, err)
	defer conn.Close()

	var welcome ws.Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, ws.TypeConnection, welcome.Type)

	body, contentType := uploadBody(t, map[string]string{"cv.csv": testutil.CVCSV(4)}, nil)
	resp, err := http.Post(base+"/api/process", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []string
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for len(types) < 3 {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{ws.TypeBatchStarted, ws.TypeFileProcessed, ws.TypeBatchCompleted}, types)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Stop(ctx))

	_, open := <-errCh
	assert.False(t, open)
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	app := newTestApp(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	assert.Equal(t, id, generateBuildID())
	assert.False(t, strings.ContainsAny(id, "ghijklmnopqrstuvwxyz"))
}
