package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"voltweb/internal/config"
	"voltweb/internal/infrastructure"
)

// Handler upgrades HTTP requests into hub clients
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	allowedOrigins []string
	logger         *slog.Logger
}

// NewHandler creates the /ws endpoint handler. Requests without an Origin
// header, same-host origins and listed origins are accepted; "*" accepts all.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	h.logger.WarnContext(r.Context(), "websocket origin rejected",
		slog.String("origin", origin),
		slog.String("host", r.Host))
	return false
}

// ServeHTTP upgrades the connection and hands the client to the hub
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	client := NewClient(h.hub, NewConnectionWrapper(conn), traceID, h.logger)
	if !client.Serve() {
		h.logger.WarnContext(r.Context(), "hub stopped, websocket client refused")
	}
}
