// internal/hub/broadcast.go
package hub

import (
	"encoding/json"

	"github.com/SlavikCA/teamplay/internal/metrics"
)

// BroadcastAll marshals msg once and sends it to every registered connection.
// A failed send drops that connection only.
func (h *Hub) BroadcastAll(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.Logger.Errorf("Failed to marshal broadcast message: %v", err)
		return
	}

	h.registry.ForEach(func(conn Conn) {
		h.deliver(conn, data)
	})
}

// SendTo sends msg to conn if it is still registered.
func (h *Hub) SendTo(conn Conn, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.Logger.Errorf("Failed to marshal message: %v", err)
		return
	}
	h.sendData(conn, data)
}

func (h *Hub) sendData(conn Conn, data []byte) {
	if !h.registry.Contains(conn) {
		h.Logger.WithField("conn_id", conn.ID()).Debug("Skipping send to unregistered connection")
		return
	}
	h.deliver(conn, data)
}

func (h *Hub) deliver(conn Conn, data []byte) {
	if err := conn.Send(data); err != nil {
		metrics.SendFailures.Inc()
		h.Logger.WithField("conn_id", conn.ID()).WithError(err).Warn("Send failed, dropping connection")
		h.Unregister(conn)
	}
}
