// Package metrics exposes the relay's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks live signaling connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_active_connections",
			Help: "Number of live WebSocket signaling connections",
		},
	)

	// ActiveRooms tracks rooms currently holding at least one member.
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_active_rooms",
			Help: "Number of rooms with at least one member",
		},
	)

	// FramesDelivered counts frames accepted into a peer's send queue, by event type.
	FramesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_frames_delivered_total",
			Help: "Frames enqueued for delivery to peers",
		},
		[]string{"event"},
	)

	// FramesDropped counts frames lost to a full peer queue, by event type.
	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_frames_dropped_total",
			Help: "Frames dropped because a peer send queue was full",
		},
		[]string{"event"},
	)

	// EventsRejected counts inbound frames rejected at the boundary.
	EventsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signaling_events_rejected_total",
			Help: "Inbound events rejected before reaching the relay core",
		},
	)

	// UnknownTargets counts point-to-point relays addressed to dead sessions.
	UnknownTargets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signaling_unknown_targets_total",
			Help: "Signaling relays silently dropped for unknown target sessions",
		},
	)
)
