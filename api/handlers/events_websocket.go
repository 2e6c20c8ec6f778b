package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/app"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the API is bound to localhost by default
	},
}

// EventsHandler streams registry changes to WebSocket observers
type EventsHandler struct {
	notifier *app.Notifier
	buffer   int
	shutdown <-chan struct{}
	logger   *zap.Logger
}

// NewEventsHandler creates a new events handler. Open streams are closed
// with a going-away frame once shutdown is closed; nil never fires.
func NewEventsHandler(notifier *app.Notifier, shutdown <-chan struct{}, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		notifier: notifier,
		buffer:   app.DefaultSubscriptionBuffer,
		shutdown: shutdown,
		logger:   logger,
	}
}

// HandleWebSocket handles GET /api/v1/events. Each message is one
// RegistryChange as JSON; a slow client loses the oldest pending changes.
func (h *EventsHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.notifier.Subscribe(h.buffer)
	defer sub.Close()

	h.logger.Info("WebSocket observer connected",
		zap.String("subscription_id", sub.ID),
		zap.String("remote_addr", c.Request.RemoteAddr))
	defer func() {
		h.logger.Info("WebSocket observer disconnected",
			zap.String("subscription_id", sub.ID),
			zap.Int("dropped", sub.Dropped()))
	}()

	// reads only detect the client going away
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
		case change, ok := <-sub.C():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(change); err != nil {
				h.logger.Debug("Failed to send change", zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return

		case <-h.shutdown:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case <-c.Request.Context().Done():
			return
		}
	}
}
