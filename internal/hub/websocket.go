// internal/hub/websocket.go
package hub

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// ServeWs upgrades the HTTP connection to a WebSocket and registers the client.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := newClient(conn, h.config.Connection.SendBufferSize)
	h.Register(client)
	go h.WritePump(client)
	go h.ReadPump(client)
}

// ReadPump feeds messages from the socket into the router until the socket
// fails or closes, then unregisters the client.
func (h *Hub) ReadPump(client *Client) {
	defer func() {
		h.Unregister(client)
		client.conn.Close()
	}()

	cfg := h.config.Connection
	client.conn.SetReadLimit(cfg.MaxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.Logger.WithField("conn_id", client.id).Errorf("WebSocket error: %v", err)
			}
			return
		}
		h.HandleMessage(client, data)
	}
}

// WritePump writes queued messages, one frame per message, and sends
// transport-level pings so dead peers are noticed by the read deadline.
func (h *Hub) WritePump(client *Client) {
	cfg := h.config.Connection
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				// The hub closed the channel.
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.Logger.WithField("conn_id", client.id).Warnf("Write failed: %v", err)
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
