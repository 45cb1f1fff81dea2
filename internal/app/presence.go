package app

import (
	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
)

// PresenceBroadcaster emits join/leave/roster events to a room's members.
// It consults only the roster it is handed, so membership reads and
// broadcasts stay ordered by whoever serialized the mutation.
type PresenceBroadcaster struct {
	sessions *SessionRegistry
}

func NewPresenceBroadcaster(sessions *SessionRegistry) *PresenceBroadcaster {
	return &PresenceBroadcaster{sessions: sessions}
}

// AnnounceJoin tells existing members about the joiner and hands the joiner
// the full roster. The joiner never hears its own join as user_joined.
func (p *PresenceBroadcaster) AnnounceJoin(room domain.RoomID, joiner domain.Member, roster []domain.Member) {
	joined := core.NewUserJoined(joiner, roster)
	for _, m := range roster {
		if m.ID == joiner.ID {
			continue
		}
		if conn, ok := p.sessions.Conn(m.ID); ok {
			emit(core.TypeUserJoined, m.ID, conn, joined)
		}
	}
	p.SendRoster(joiner.ID, roster)
}

// SendRoster delivers a room_users snapshot to a single session. Also used
// alone for the idempotent re-join roster refresh.
func (p *PresenceBroadcaster) SendRoster(sid domain.SessionID, roster []domain.Member) {
	if conn, ok := p.sessions.Conn(sid); ok {
		emit(core.TypeRoomUsers, sid, conn, core.NewRoomUsers(roster))
	}
}

// AnnounceLeave notifies the remaining members; an empty remainder means
// the room is gone and there is no one to tell.
func (p *PresenceBroadcaster) AnnounceLeave(room domain.RoomID, departed domain.SessionID, remaining []domain.Member) {
	if len(remaining) == 0 {
		return
	}
	left := core.NewUserLeft(departed, remaining)
	for _, m := range remaining {
		if conn, ok := p.sessions.Conn(m.ID); ok {
			emit(core.TypeUserLeft, m.ID, conn, left)
		}
	}
}
