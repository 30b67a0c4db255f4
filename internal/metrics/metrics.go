// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection metrics
var (
	// ConnectedClients tracks currently registered connections
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "race_connected_clients",
			Help: "Number of currently registered websocket connections",
		},
	)

	// SendFailures counts sends that failed and caused the connection to be dropped
	SendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "race_send_failures_total",
			Help: "Total outbound sends that failed and removed the connection",
		},
	)

	// KeepalivesSent counts keepalive broadcasts
	KeepalivesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "race_keepalives_total",
			Help: "Total keepalive ping broadcasts",
		},
	)
)

// Protocol metrics
var (
	// MessagesReceived counts decoded client messages by action ("unknown" for unrecognised actions)
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_messages_received_total",
			Help: "Total client messages received by action",
		},
		[]string{"action"},
	)

	// ProtocolErrors counts discarded client messages by reason
	ProtocolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_protocol_errors_total",
			Help: "Total client messages discarded as protocol errors by reason",
		},
		[]string{"reason"},
	)
)

// Race metrics
var (
	RaceStarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "race_starts_total",
			Help: "Total race clock starts",
		},
	)

	// ResultSeconds observes the elapsed time reported for each finished team
	ResultSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "race_result_seconds",
			Help:    "Elapsed race time reported to finishing teams",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)
)

// Protocol error reasons.
const (
	ReasonMalformed    = "malformed"
	ReasonMissingField = "missing_field"
	ReasonNotStarted   = "not_started"
	ReasonNoManager    = "no_manager"
)
