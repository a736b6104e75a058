package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/linskybing/grant-review/internal/api/middleware"
	"github.com/linskybing/grant-review/internal/events"
	"github.com/linskybing/grant-review/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxClientMessage = 512
)

// EventsHandler streams the workflow events of one call over a websocket.
type EventsHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewEventsHandler(hub *events.Hub, allowedOrigins []string, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
			},
		},
	}
}

// Stream godoc
// @Summary Live workflow events of a call
// @Tags events
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Router /ws/calls/{id}/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	_, callID, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn("websocket upgrade failed", "call_id", callID, "error", err)
		return
	}

	sub, cancel := h.hub.Subscribe(callID)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxClientMessage)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case evt, ok := <-sub:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
