package tracker

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atmx/listing-metrics/internal/metrics"
	"github.com/atmx/listing-metrics/internal/model"
)

const (
	// pongWait is how long a silent client is kept before its read fails.
	pongWait = 60 * time.Second
	// pingPeriod must stay below pongWait.
	pingPeriod = 30 * time.Second
)

// WSMessage is a JSON message sent to WebSocket clients after every change
// to the listing collection. Summary is the recomputed portfolio summary.
type WSMessage struct {
	Type      string                 `json:"type"` // listing_added, listing_updated, listing_removed
	ListingID string                 `json:"listing_id"`
	Summary   model.PortfolioSummary `json:"summary"`
}

// WSHub fans summary updates out to dashboard connections. All writes to a
// connection happen under mu, since a websocket.Conn allows one writer.
type WSHub struct {
	mu      sync.RWMutex
	conns   map[*websocket.Conn]struct{}
	updates chan []byte
	joins   chan *websocket.Conn
	leaves  chan *websocket.Conn
}

// NewWSHub creates a hub; start it with Run.
func NewWSHub() *WSHub {
	return &WSHub{
		conns:   make(map[*websocket.Conn]struct{}),
		updates: make(chan []byte, 256),
		joins:   make(chan *websocket.Conn),
		leaves:  make(chan *websocket.Conn),
	}
}

// Run serializes joins, leaves and updates. It never returns.
func (h *WSHub) Run() {
	for {
		select {
		case conn := <-h.joins:
			n := h.apply(func() { h.conns[conn] = struct{}{} })
			slog.Info("dashboard connected", "clients", n)

		case conn := <-h.leaves:
			h.apply(func() { h.drop(conn) })

		case msg := <-h.updates:
			h.apply(func() {
				for conn := range h.conns {
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						h.drop(conn)
					}
				}
			})
		}
	}
}

// apply runs fn under the write lock and publishes the resulting client count.
func (h *WSHub) apply(fn func()) int {
	h.mu.Lock()
	fn()
	n := len(h.conns)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
	return n
}

// drop closes and forgets conn. Callers hold mu.
func (h *WSHub) drop(conn *websocket.Conn) {
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
}

// ClientCount returns the number of connected dashboards.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast queues msg for every connection. A full queue drops the update;
// the next change carries a fresh summary anyway.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws encode failed", "type", msg.Type, "err", err)
		return
	}
	select {
	case h.updates <- data:
	default:
		slog.Warn("ws update dropped", "type", msg.Type, "listing_id", msg.ListingID)
	}
}

// The dashboard may be served from any host; the HTTP API is open via CORS too.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// HandleWS upgrades GET /api/v1/ws and keeps the connection alive until the
// client goes away. Clients only receive; anything they send is discarded.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	h.joins <- conn
	go h.readLoop(conn)
	go h.pingLoop(conn)
}

func (h *WSHub) readLoop(conn *websocket.Conn) {
	defer func() { h.leaves <- conn }()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *WSHub) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.Lock()
		_, live := h.conns[conn]
		var err error
		if live {
			err = conn.WriteMessage(websocket.PingMessage, nil)
		}
		h.mu.Unlock()
		if !live || err != nil {
			return
		}
	}
}
