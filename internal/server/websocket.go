package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades to WebSocket and streams report snapshots to the client.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots := s.hub.Subscribe()
	defer s.hub.Unsubscribe(snapshots)

	// Read pump: detect client disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Write pump: send snapshots as JSON.
	for {
		select {
		case <-gone:
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Warn("websocket write failed", "error", err)
				return
			}
		}
	}
}
