package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
	"github.com/mkoval/meet-signaling/internal/metrics"
)

// SignalRouter forwards offer/answer/ice_candidate blobs to one target
// session. Fire-and-forget: a dead target costs the sender nothing, the
// browser peer owns its own timeout and retry.
type SignalRouter struct {
	sessions *SessionRegistry
}

func NewSignalRouter(sessions *SessionRegistry) *SignalRouter {
	return &SignalRouter{sessions: sessions}
}

func (s *SignalRouter) Relay(kind core.SignalKind, payload json.RawMessage, from, to domain.SessionID) {
	conn, ok := s.sessions.Conn(to)
	if !ok {
		metrics.UnknownTargets.Inc()
		log.Debug().Str("module", "app.signal").Str("kind", string(kind)).Str("to", string(to)).Msg("no live session for target, dropping")
		return
	}
	emit(string(kind), to, conn, core.NewSignalForward(kind, payload, from))
}
