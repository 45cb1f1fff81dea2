package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
	"github.com/mkoval/meet-signaling/internal/metrics"
)

// Lifecycle orchestrates connect/join/leave/disconnect and keeps the
// session and room registries consistent with each other. It is the only
// component allowed to perform that paired update.
//
// One mutex serializes every membership transition together with its
// presence broadcast, so per-room events go out in arrival order. Holding
// it across the broadcast is fine: enqueueing to a peer never blocks.
// Disconnect removes the session under the same mutex, so any event still
// in flight for that session finds nothing and no-ops — disconnect wins.
type Lifecycle struct {
	mu       sync.Mutex
	sessions *SessionRegistry
	rooms    *RoomRegistry
	presence *PresenceBroadcaster
}

func NewLifecycle(sessions *SessionRegistry, rooms *RoomRegistry, presence *PresenceBroadcaster) *Lifecycle {
	return &Lifecycle{sessions: sessions, rooms: rooms, presence: presence}
}

// Connect registers a fresh session with no room.
func (l *Lifecycle) Connect(sid domain.SessionID, conn core.SignalConnection) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions.Register(sid, conn)
}

// JoinRoom moves the session into a room, leaving its previous room first
// when switching. A repeat join to the same room just refreshes the roster.
func (l *Lifecycle) JoinRoom(sid domain.SessionID, room domain.RoomID, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions.Lookup(sid)
	if !ok {
		// Disconnect already ran; the join arrived too late.
		return
	}

	if name != "" {
		l.sessions.SetName(sid, name)
		sess.Name = domain.ClampDisplayName(name)
	}

	if sess.Room != "" && sess.Room != room {
		l.leaveLocked(sid, sess.Room)
	}

	res := l.rooms.Join(room, domain.Member{ID: sid, Name: sess.Name})
	l.sessions.UpdateRoom(sid, room)
	metrics.ActiveRooms.Set(float64(l.rooms.Count()))

	if !res.Added {
		// Idempotent re-join: no duplicate roster entry, no user_joined noise.
		l.presence.SendRoster(sid, res.Members)
		return
	}

	log.Info().Str("module", "app.lifecycle").Str("sid", string(sid)).Str("room", string(room)).
		Bool("created", res.Created).Msg("joined room")
	l.presence.AnnounceJoin(room, domain.Member{ID: sid, Name: sess.Name}, res.Members)
}

// LeaveRoom takes the session back to the no-room state; a session that is
// not in a room has nothing to leave.
func (l *Lifecycle) LeaveRoom(sid domain.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions.Lookup(sid)
	if !ok || sess.Room == "" {
		return
	}
	l.leaveLocked(sid, sess.Room)
}

// Disconnect is terminal and idempotent: cleans up membership like a leave,
// then destroys the session record. Partial state never makes it throw.
func (l *Lifecycle) Disconnect(sid domain.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions.Lookup(sid)
	if !ok {
		return
	}
	if sess.Room != "" {
		l.leaveLocked(sid, sess.Room)
	}
	l.sessions.Remove(sid)
	log.Info().Str("module", "app.lifecycle").Str("sid", string(sid)).Msg("disconnected")
}

// leaveLocked runs the shared leave path: registry removal, paired session
// update, then the conditional broadcast. Caller holds l.mu.
func (l *Lifecycle) leaveLocked(sid domain.SessionID, room domain.RoomID) {
	res := l.rooms.Leave(room, sid)
	l.sessions.ClearRoom(sid)
	metrics.ActiveRooms.Set(float64(l.rooms.Count()))
	if res.Removed {
		log.Info().Str("module", "app.lifecycle").Str("sid", string(sid)).Str("room", string(room)).Msg("left room")
		l.presence.AnnounceLeave(room, sid, res.Members)
	}
}
