// internal/hub/hub.go
// Provides the Hub: the coordinator that owns the open connections, the race
// clock and the manager reference, and runs the keepalive loop.
package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/SlavikCA/teamplay/internal/logger"
	"github.com/SlavikCA/teamplay/internal/message"
	"github.com/SlavikCA/teamplay/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	defaultKeepaliveInterval = 30 * time.Second

	// Frames above this size are a transport error and close the socket.
	defaultMaxMessageSize = 64 * 1024
)

// Config holds the hub's timing and per-connection settings.
type Config struct {
	KeepaliveInterval time.Duration
	Connection        ConnectionConfig
}

// ConnectionConfig holds configuration for websocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration // must be less than ReadTimeout
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns the production timings: a 30s keepalive and a 64 KiB
// frame limit.
func DefaultConfig() Config {
	return Config{
		KeepaliveInterval: defaultKeepaliveInterval,
		Connection: ConnectionConfig{
			WriteTimeout:    10 * time.Second,
			ReadTimeout:     60 * time.Second,
			PingInterval:    54 * time.Second,
			MaxMessageSize:  defaultMaxMessageSize,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			SendBufferSize:  256,
			CheckOrigin: func(r *http.Request) bool {
				// Clients are unauthenticated; any origin may join.
				return true
			},
		},
	}
}

// Hub coordinates one race among the connected clients.
type Hub struct {
	registry  *Registry
	race      *RaceClock
	clock     clockwork.Clock
	config    Config
	upgrader  websocket.Upgrader
	publisher Publisher
	Logger    *logger.Logger

	// raceMu guards manager and serializes starts so the recorded start
	// instant and the manager always come from the same start message.
	raceMu  sync.Mutex
	manager Conn
}

// Stats is a point-in-time view used by the health endpoint.
type Stats struct {
	Connections int  `json:"connections"`
	RaceStarted bool `json:"race_started"`
}

// NewHub creates a hub. publisher may be nil, in which case race events are
// not mirrored to NATS.
func NewHub(config Config, clock clockwork.Clock, publisher Publisher, logger *logger.Logger) *Hub {
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = defaultKeepaliveInterval
	}
	return &Hub{
		registry:  NewRegistry(),
		race:      NewRaceClock(clock),
		clock:     clock,
		config:    config,
		publisher: publisher,
		Logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.Connection.ReadBufferSize,
			WriteBufferSize: config.Connection.WriteBufferSize,
			CheckOrigin:     config.Connection.CheckOrigin,
		},
	}
}

// Run broadcasts a keepalive ping on every tick until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := h.clock.NewTicker(h.config.KeepaliveInterval)
	defer ticker.Stop()

	h.Logger.Infof("Keepalive running every %s", h.config.KeepaliveInterval)
	for {
		select {
		case <-ctx.Done():
			h.Logger.Info("Keepalive stopped")
			return
		case <-ticker.Chan():
			h.BroadcastAll(message.Ping())
			metrics.KeepalivesSent.Inc()
		}
	}
}

// Register adds a newly opened connection.
func (h *Hub) Register(conn Conn) {
	if !h.registry.Add(conn) {
		return
	}
	metrics.ConnectedClients.Set(float64(h.registry.Len()))
	h.Logger.WithField("conn_id", conn.ID()).Infof("New connection (total: %d)", h.registry.Len())
}

// Unregister removes a connection after close or a failed send, and closes it.
// Calling it for a connection that is already gone only closes it again.
func (h *Hub) Unregister(conn Conn) {
	if h.registry.Remove(conn) {
		if h.clearManager(conn) {
			h.Logger.WithField("conn_id", conn.ID()).Warn("Manager disconnected")
		}
		metrics.ConnectedClients.Set(float64(h.registry.Len()))
		h.Logger.WithField("conn_id", conn.ID()).Infof("Connection has disconnected (remaining: %d)", h.registry.Len())
	}
	conn.Close()
}

// CloseAll unregisters every connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.registry.ForEach(h.Unregister)
}

// Stats reports the connection count and whether a race is running.
func (h *Hub) Stats() Stats {
	return Stats{
		Connections: h.registry.Len(),
		RaceStarted: h.race.IsStarted(),
	}
}

// Manager returns the connection that issued the latest start, or nil.
func (h *Hub) Manager() Conn {
	h.raceMu.Lock()
	defer h.raceMu.Unlock()

	return h.manager
}

// startRace records a new start instant and makes conn the manager in one
// step. It reports whether a previous start was overwritten.
func (h *Hub) startRace(conn Conn) (startedAt time.Time, restarted bool) {
	h.raceMu.Lock()
	defer h.raceMu.Unlock()

	restarted = h.race.IsStarted()
	startedAt = h.race.Start()
	h.manager = conn
	return startedAt, restarted
}

func (h *Hub) clearManager(conn Conn) bool {
	h.raceMu.Lock()
	defer h.raceMu.Unlock()

	if h.manager != conn {
		return false
	}
	h.manager = nil
	return true
}
