// internal/hub/messaging.go
package hub

import (
	"encoding/json"
	"errors"

	"github.com/SlavikCA/teamplay/internal/message"
	"github.com/SlavikCA/teamplay/internal/metrics"
)

// HandleMessage decodes one client message and routes it by action.
// Bad input is logged and dropped; the connection stays open and nothing is
// sent back.
func (h *Hub) HandleMessage(conn Conn, data []byte) {
	cmd, err := message.Decode(data)
	if err != nil {
		h.rejectMessage(conn, err)
		return
	}
	metrics.MessagesReceived.WithLabelValues(cmd.Action()).Inc()

	switch cmd := cmd.(type) {
	case message.Register:
		h.handleRegister(conn, cmd)
	case message.Start:
		h.handleStart(conn)
	case message.Ready:
		h.handleReady(conn, cmd)
	}
}

func (h *Hub) rejectMessage(conn Conn, err error) {
	log := h.Logger.WithField("conn_id", conn.ID())

	switch {
	case errors.Is(err, message.ErrUnknownAction):
		metrics.MessagesReceived.WithLabelValues("unknown").Inc()
		log.Debugf("Ignoring message: %v", err)
	case errors.Is(err, message.ErrMissingField):
		metrics.ProtocolErrors.WithLabelValues(metrics.ReasonMissingField).Inc()
		log.WithError(err).Warn("Discarding invalid message")
	default:
		metrics.ProtocolErrors.WithLabelValues(metrics.ReasonMalformed).Inc()
		log.WithError(err).Warn("Discarding malformed message")
	}
}

// handleRegister announces the team to everyone. Registration keeps no state.
func (h *Hub) handleRegister(conn Conn, cmd message.Register) {
	h.BroadcastAll(message.NewTeam(cmd.TeamName))
	h.publishTeamRegistered(conn, cmd.TeamName)

	h.Logger.WithField("conn_id", conn.ID()).Infof("Team registered: %s", cmd.TeamName)
}

// handleStart (re)starts the race clock and makes the sender the manager.
func (h *Hub) handleStart(conn Conn) {
	startedAt, restarted := h.startRace(conn)
	metrics.RaceStarts.Inc()

	h.BroadcastAll(message.RaceStarted())
	h.publishRaceStarted(conn, startedAt)

	log := h.Logger.WithField("conn_id", conn.ID())
	if restarted {
		log.Warn("Race restarted; previous start overwritten")
	} else {
		log.Info("Race started")
	}
}

// handleReady replies with the team's elapsed time to the sender and to the
// manager. A sender that is also the manager gets a single reply.
func (h *Hub) handleReady(conn Conn, cmd message.Ready) {
	log := h.Logger.WithField("conn_id", conn.ID())

	now := h.clock.Now()
	elapsed, err := h.race.ElapsedSince(now)
	if err != nil {
		metrics.ProtocolErrors.WithLabelValues(metrics.ReasonNotStarted).Inc()
		log.WithError(err).Warnf("Discarding ready from team %s", cmd.Team)
		return
	}

	result := message.ReadyResult{
		Team:      cmd.Team,
		Timestamp: now.Format(message.TimestampLayout),
		TimeTaken: RoundSeconds(elapsed),
	}
	data, err := json.Marshal(message.Result(result))
	if err != nil {
		h.Logger.Errorf("Failed to marshal result: %v", err)
		return
	}
	metrics.ResultSeconds.Observe(result.TimeTaken)

	h.sendData(conn, data)

	manager := h.Manager()
	switch {
	case manager == nil:
		metrics.ProtocolErrors.WithLabelValues(metrics.ReasonNoManager).Inc()
		log.Warnf("No manager connected; result for team %s sent to sender only", cmd.Team)
	case manager != conn:
		h.sendData(manager, data)
	}

	h.publishResult(conn, result)
	log.Infof("Team %s finished in %.3fs", result.Team, result.TimeTaken)
}
