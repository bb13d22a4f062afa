package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/usecase"
)

// Time allowed to write a message to the peer.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The demo serves its own UI, cross-origin clients are fine.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StageEvent is pushed to subscribers as the pipeline advances.
type StageEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Stage     string `json:"stage"`
	Timestamp string `json:"timestamp"`
}

// ProgressHub fan-outs pipeline stage events to the browsers watching
// a session. It implements usecase.ProgressNotifier.
type ProgressHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]bool
	logger      *zap.Logger
}

var _ usecase.ProgressNotifier = (*ProgressHub)(nil)

// NewProgressHub creates an empty hub.
func NewProgressHub(logger *zap.Logger) *ProgressHub {
	return &ProgressHub{
		subscribers: make(map[string]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Subscribe registers a connection for a session's events.
func (h *ProgressHub) Subscribe(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.subscribers[sessionID][conn] = true

	h.logger.Info("Progress subscriber registered",
		zap.String("sessionID", sessionID),
		zap.Int("subscribers", len(h.subscribers[sessionID])))
}

// Unsubscribe removes a connection.
func (h *ProgressHub) Unsubscribe(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.subscribers[sessionID]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subscribers, sessionID)
		}
	}
}

// SubscriberCount returns how many connections watch a session.
func (h *ProgressHub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}

// NotifyStage pushes a stage event to every subscriber of the session.
// Connections that fail to accept the write are dropped.
func (h *ProgressHub) NotifyStage(sessionID string, stage usecase.Stage) {
	event := StageEvent{
		Type:      "stage",
		SessionID: sessionID,
		Stage:     string(stage),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subscribers[sessionID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warn("Dropping slow progress subscriber",
				zap.String("sessionID", sessionID),
				zap.Error(err))
			conn.Close()
			delete(h.subscribers[sessionID], conn)
		}
	}
}

// HandleProgress upgrades the request and streams stage events until
// the client disconnects.
func HandleProgress(hub *ProgressHub, c echo.Context, sessionID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	hub.Subscribe(sessionID, conn)
	defer func() {
		hub.Unsubscribe(sessionID, conn)
		conn.Close()
	}()

	// The client never sends anything meaningful; the read loop only
	// detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
