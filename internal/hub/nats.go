// internal/hub/nats.go
package hub

import (
	"encoding/json"
	"time"

	"github.com/SlavikCA/teamplay/internal/message"
)

// Race events are mirrored to these subjects for external consumers.
const (
	subjectTeamRegistered = "race.teams.registered"
	subjectRaceStarted    = "race.started"
	subjectRaceResults    = "race.results"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

func (h *Hub) publishTeamRegistered(conn Conn, teamName string) {
	h.publishEvent(subjectTeamRegistered, map[string]interface{}{
		"team_name": teamName,
		"conn_id":   conn.ID(),
		"timestamp": h.clock.Now().Unix(),
	})
}

func (h *Hub) publishRaceStarted(manager Conn, startedAt time.Time) {
	h.publishEvent(subjectRaceStarted, map[string]interface{}{
		"manager_id": manager.ID(),
		"started_at": startedAt.Format(time.RFC3339Nano),
	})
}

func (h *Hub) publishResult(conn Conn, result message.ReadyResult) {
	h.publishEvent(subjectRaceResults, map[string]interface{}{
		"conn_id": conn.ID(),
		"result":  result,
	})
}

// publishEvent is best effort: failures are logged and never reach clients.
func (h *Hub) publishEvent(subject string, event map[string]interface{}) {
	if h.publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.Logger.Errorf("Failed to marshal %s event: %v", subject, err)
		return
	}
	if err := h.publisher.Publish(subject, data); err != nil {
		h.Logger.Errorf("Failed to publish %s to NATS: %v", subject, err)
	}
}
