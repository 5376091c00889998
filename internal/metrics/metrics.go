// Package metrics exposes the relay's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons used as the `reason` label on DroppedTotal.
const (
	DropReasonTargetNotFound    = "target_not_found"
	DropReasonPeerGone          = "peer_gone"
	DropReasonProtocolViolation = "protocol_violation"
)

type Metrics struct {
	reg *prometheus.Registry

	ConnectionsTotal  prometheus.Counter
	ActiveConnections prometheus.Gauge
	JoinsTotal        prometheus.Counter
	ActiveRooms       prometheus.Gauge

	// ForwardedTotal counts point-to-point signaling messages relayed to
	// their target, labelled by message kind.
	ForwardedTotal *prometheus.CounterVec

	// BroadcastsTotal counts room-wide fan-out events, labelled by the
	// outbound event name.
	BroadcastsTotal *prometheus.CounterVec

	// DroppedTotal counts messages the relay discarded, labelled by reason.
	// Drops are expected conditions, never surfaced to the sender.
	DroppedTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,

		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "videomeet_relay_connections_total",
			Help: "Websocket connections accepted since process start.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videomeet_relay_active_connections",
			Help: "Currently open websocket connections.",
		}),
		JoinsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "videomeet_relay_joins_total",
			Help: "Successful room joins since process start.",
		}),
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videomeet_relay_active_rooms",
			Help: "Rooms with at least one member.",
		}),
		ForwardedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videomeet_relay_forwarded_messages_total",
			Help: "Point-to-point signaling messages forwarded to their target.",
		}, []string{"kind"}),
		BroadcastsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videomeet_relay_broadcast_events_total",
			Help: "Room-wide broadcast events emitted.",
		}, []string{"event"}),
		DroppedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videomeet_relay_dropped_messages_total",
			Help: "Inbound messages discarded without delivery.",
		}, []string{"reason"}),
	}
}

// Handler serves the registry in the Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
