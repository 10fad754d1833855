package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"voltweb/internal/config"
	"voltweb/internal/infrastructure"
)

// Message types sent to clients
const (
	TypeConnection     = "connection"
	TypeBatchStarted   = "batch:started"
	TypeFileProcessed  = "file:processed"
	TypeBatchCompleted = "batch:completed"
	TypePlotCleared    = "plot:cleared"
)

const broadcastQueueSize = 256

// Message is the envelope of every frame written to a client
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *Metrics

	pingPeriod time.Duration
	pongWait   time.Duration

	quit     chan struct{}
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMetrics attaches OpenTelemetry instruments to the hub
func WithMetrics(m *Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithKeepalive sets the ping period and pong wait from the websocket config.
// Zero values keep the defaults.
func WithKeepalive(cfg config.WebSocketConfig) HubOption {
	return func(h *Hub) {
		if cfg.PongWait > 0 {
			h.pongWait = cfg.PongWait
		}
		if cfg.PingPeriod > 0 && cfg.PingPeriod < h.pongWait {
			h.pingPeriod = cfg.PingPeriod
		} else {
			h.pingPeriod = (h.pongWait * 9) / 10
		}
	}
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in a new goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. Only this goroutine closes client send queues.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.recordConnection(ctx)
			h.logger.InfoContext(ctx, "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			welcome, err := encode(TypeConnection, map[string]string{
				"status":    "connected",
				"message":   "Connected to voltweb",
				"client_id": client.id,
			}, client.traceID)
			if err == nil {
				select {
				case client.send <- welcome:
				default:
					h.logger.WarnContext(ctx, "client buffer full, connection message dropped")
				}
			}

		case client := <-h.unregister:
			h.remove(client, "closed")

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					h.logger.WarnContext(client.context(), "client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					h.metrics.recordDropped(client.context(), "slow_client")
					h.remove(client, "slow")
				}
			}

			h.logger.Debug("broadcast delivered",
				slog.Int("client_count", len(clients)),
				slog.Int("message_size", len(message)))
		}
	}
}

func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	lifetime := time.Since(client.connectedAt)
	h.metrics.recordDisconnection(ctx, lifetime, reason)
	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Int("total_clients", count),
		slog.Duration("connection_duration", lifetime))
}

// Register hands a client to the hub loop. It reports false once the hub
// has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast sends a typed message to all connected clients
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastWithTrace(messageType, data, "")
}

// BroadcastWithTrace sends a typed message carrying a trace id
func (h *Hub) BroadcastWithTrace(messageType string, data interface{}, traceID string) {
	payload, err := encode(messageType, data, traceID)
	if err != nil {
		h.logger.Error("error marshaling message",
			slog.String("message_type", messageType),
			slog.String("error", err.Error()))
		return
	}
	h.enqueue(payload, messageType)
}

func (h *Hub) enqueue(payload []byte, messageType string) {
	select {
	case h.broadcast <- payload:
	case <-h.quit:
	default:
		h.metrics.recordDropped(context.Background(), "queue_full")
		h.logger.Warn("broadcast queue full, message dropped",
			slog.String("message_type", messageType))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)

		h.mu.RLock()
		running := h.running
		h.mu.RUnlock()
		if running {
			<-h.done
		}
	})
}

func encode(messageType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   traceID,
	})
}
