package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/internal/config"
)

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHandler_EndToEnd(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, nil, testLogger()))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	var welcome Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, TypeConnection, welcome.Type)

	hub.Broadcast(TypeBatchStarted, BatchStartedEvent{BatchID: "b", Files: 3})

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type string            `json:"type"`
		Data BatchStartedEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, TypeBatchStarted, msg.Type)
	assert.Equal(t, 3, msg.Data.Files)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"listed", []string{"http://lab.example"}, "http://lab.example", true},
		{"wildcard", []string{"*"}, "http://anywhere.example", true},
		{"rejected", []string{"http://lab.example"}, "http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewHub(testLogger()), config.WebSocketConfig{}, tt.allowed, testLogger())
			req := httptest.NewRequest(http.MethodGet, "http://voltweb.local/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(req))
		})
	}
}

func TestHandler_SameHostOrigin(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, nil, testLogger()))
	defer srv.Close()

	conn, _, err := dial(t, srv, srv.URL)
	require.NoError(t, err)
	conn.Close()

	_, resp, err := dial(t, srv, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_PlainHTTPRequest(t *testing.T) {
	h := NewHandler(NewHub(testLogger()), config.WebSocketConfig{}, nil, testLogger())
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
