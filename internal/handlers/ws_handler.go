package handlers

import (
	"log"
	"net/http"
	"time"

	"agent-arena/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST layer already allows cross-origin callers; the event stream
	// carries nothing the REST API does not.
	CheckOrigin: func(*http.Request) bool { return true },
}

const writeWait = 10 * time.Second

type WSHandler struct {
	hub *events.Hub
}

func NewWSHandler(hub *events.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve upgrades the connection and streams lifecycle events until the
// client goes away
// GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	eventCh, cancel := h.hub.Subscribe()
	log.Printf("[WS] Client connected. Total: %d", h.hub.SubscriberCount())

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			cancel()
			conn.Close()
			log.Printf("[WS] Client disconnected. Total: %d", h.hub.SubscriberCount())
		}()

		for {
			select {
			case event, ok := <-eventCh:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
}
