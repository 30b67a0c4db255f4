// internal/api/api.go
// Provides StartServer and the HTTP surface: the websocket endpoint, health
// and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/SlavikCA/teamplay/internal/hub"
	"github.com/SlavikCA/teamplay/internal/logger"
	"github.com/SlavikCA/teamplay/internal/util"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
	natsClientName  = "race-relay"
)

// StartServer runs the hub and the HTTP server until ctx is cancelled.
func StartServer(ctx context.Context, config util.Config, serverLogger *logger.Logger) error {
	nc := connectNATS(config.NatsURL, serverLogger)
	if nc != nil {
		defer nc.Close()
	}

	// A nil *nats.Conn must not be stored in the interface.
	var publisher hub.Publisher
	if nc != nil {
		publisher = nc
	}

	hubConfig := hub.DefaultConfig()
	hubConfig.KeepaliveInterval = config.KeepaliveInterval()
	h := hub.NewHub(hubConfig, clockwork.NewRealClock(), publisher, logger.NewLogger("hub"))

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go h.Run(hubCtx)

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: NewRouter(h, nc),
	}

	errCh := make(chan error, 1)
	go func() {
		serverLogger.Infof("WebSocket server running on ws://%s", config.Addr())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	serverLogger.Info("Server shutting down")
	stopHub()
	h.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		serverLogger.Errorf("Shutdown error: %v", err)
		return err
	}
	return nil
}

// connectNATS returns nil when url is empty or the server is unreachable; the
// race runs without the event feed in that case.
func connectNATS(url string, serverLogger *logger.Logger) *nats.Conn {
	if url == "" {
		serverLogger.Info("NATS_URL not set. Race event feed disabled.")
		return nil
	}

	serverLogger.Infof("Connecting to NATS at %s", url)
	nc, err := nats.Connect(url, nats.Name(natsClientName), nats.MaxReconnects(-1))
	if err != nil {
		serverLogger.Errorf("Error connecting to NATS: %v", err)
		serverLogger.Warn("Running without NATS connection. Race event feed disabled.")
		return nil
	}
	serverLogger.Info("Successfully connected to NATS")
	return nc
}

// NewRouter builds the HTTP handler. nc may be nil.
func NewRouter(h *hub.Hub, nc *nats.Conn) http.Handler {
	mux := http.NewServeMux()

	// Existing clients connect to the bare host, so the websocket is served at
	// the root as well as /ws.
	mux.HandleFunc("/ws", h.ServeWs)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		h.ServeWs(w, r)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := h.Stats()
		health := map[string]interface{}{
			"status":       "ok",
			"connections":  stats.Connections,
			"race_started": stats.RaceStarted,
			"nats":         natsStatus(nc),
			"version":      version,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})
	return c.Handler(mux)
}

func natsStatus(nc *nats.Conn) string {
	switch {
	case nc == nil:
		return "disabled"
	case nc.Status() == nats.CONNECTED:
		return "connected"
	default:
		return "disconnected"
	}
}
