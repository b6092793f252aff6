package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// WebSocketHandler streams published events (upload progress, upload state,
// status refreshes) to connected clients.
type WebSocketHandler struct {
	events           interfaces.EventService
	logger           arbor.ILogger
	mu               sync.RWMutex
	clients          map[*websocket.Conn]bool
	serverInstanceID string // clients use this to detect server restart
}

func NewWebSocketHandler(events interfaces.EventService) *WebSocketHandler {
	h := &WebSocketHandler{
		events:           events,
		logger:           common.GetLogger(),
		clients:          make(map[*websocket.Conn]bool),
		serverInstanceID: uuid.New().String(),
	}

	h.logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")
	return h
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Int("clients", clientCount).Msg("WebSocket client connected")

	// Greeting carries the instance id so clients can detect restarts
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(interfaces.Event{
		Type:    "connected",
		Payload: map[string]string{"server_instance_id": h.serverInstanceID},
	}); err != nil {
		h.drop(conn)
		return
	}

	eventCh, cancel := h.events.Subscribe()
	defer cancel()
	defer h.drop(conn)

	// Reader goroutine drains client frames and signals close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *WebSocketHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
