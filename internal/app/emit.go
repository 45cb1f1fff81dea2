package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
	"github.com/mkoval/meet-signaling/internal/metrics"
)

// emit marshals and enqueues one event, fire-and-forget. A full peer queue
// costs that peer this frame, never the emitter's request handling.
func emit(event string, to domain.SessionID, conn core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.emit").Str("event", event).Msg("marshal outbound event")
		return
	}
	if err := conn.TrySend(core.Frame(b)); err != nil {
		metrics.FramesDropped.WithLabelValues(event).Inc()
		log.Warn().Str("module", "app.emit").Str("event", event).Str("to", string(to)).Msg("peer queue full, frame dropped")
		return
	}
	metrics.FramesDelivered.WithLabelValues(event).Inc()
}
