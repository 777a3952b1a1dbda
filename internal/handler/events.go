package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/biv3k224/ecommerce/internal/events"
)

// InventoryFeedHandler streams product change events over a websocket.
// Each connected client gets its own subscription on the broker; a slow
// client drops events rather than stalling publishers.
type InventoryFeedHandler struct {
	broker         *events.Broker
	logger         *slog.Logger
	allowedOrigins []string
}

// NewInventoryFeedHandler creates a new inventory feed handler
func NewInventoryFeedHandler(broker *events.Broker, logger *slog.Logger, allowedOrigins []string) *InventoryFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &InventoryFeedHandler{
		broker:         broker,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

func (h *InventoryFeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no origin.
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/inventory
func (h *InventoryFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	feed, cancel := h.broker.Subscribe()
	defer cancel()

	h.logger.Debug("inventory feed client connected", slog.String("remote", r.RemoteAddr))

	// Drain reads so close frames and pongs are processed.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	pings := time.NewTicker(15 * time.Second)
	defer pings.Stop()

	for {
		select {
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := ws.WriteJSON(event); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("inventory feed client gone", slog.String("remote", r.RemoteAddr))
				}
				return
			}
		case <-pings.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
