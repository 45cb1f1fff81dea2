package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
	"github.com/mkoval/meet-signaling/internal/metrics"
)

// handleEvent is the single typed entry point for a connection's inbound
// traffic. A rejected frame affects no one but its sender's counters.
func (ctl *Controller) handleEvent(sid domain.SessionID, data []byte) {
	ev, err := core.ParseClientEvent(data)
	if err != nil {
		metrics.EventsRejected.Inc()
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("rejected event")
		return
	}

	switch ev := ev.(type) {
	case core.JoinRoom:
		ctl.Life.JoinRoom(sid, ev.RoomID, ev.Name)
	case core.LeaveRoom:
		// The wire payload names a room for client compatibility, but a
		// session can only ever leave the room it is in.
		ctl.Life.LeaveRoom(sid)
	case core.Signal:
		ctl.Router.Relay(ev.Kind, ev.Payload, sid, ev.To)
	case core.Chat:
		ctl.Chat.Broadcast(sid, ev.Message, ev.Timestamp)
	}
}
