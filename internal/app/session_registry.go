package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
)

var ErrSessionExists = errors.New("session already registered")

type sessionState struct {
	name string
	room domain.RoomID
	conn core.SignalConnection
}

// SessionRegistry owns the session id -> session state mapping. It never
// mutates room membership itself; the paired update with the room registry
// is the lifecycle manager's job.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionState
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[domain.SessionID]*sessionState)}
}

// Register creates a session with a placeholder name and no room.
// Connection ids are unique by construction, so a collision is a bug.
func (r *SessionRegistry) Register(sid domain.SessionID, conn core.SignalConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; ok {
		return ErrSessionExists
	}
	r.sessions[sid] = &sessionState{name: domain.DefaultDisplayName(sid), conn: conn}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("session registered")
	return nil
}

// SetName updates the display name; unknown sessions are ignored.
func (r *SessionRegistry) SetName(sid domain.SessionID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		s.name = domain.ClampDisplayName(name)
	}
}

func (r *SessionRegistry) Lookup(sid domain.SessionID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return domain.Session{}, false
	}
	return domain.Session{ID: sid, Name: s.name, Room: s.room}, true
}

// Conn resolves the live transport for a session, if any.
func (r *SessionRegistry) Conn(sid domain.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return s.conn, true
}

// UpdateRoom records the session's current room. Lifecycle manager only.
func (r *SessionRegistry) UpdateRoom(sid domain.SessionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		s.room = room
	}
}

// ClearRoom drops the session's room association. Lifecycle manager only.
func (r *SessionRegistry) ClearRoom(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		s.room = ""
	}
}

// Remove deletes the session record; idempotent.
func (r *SessionRegistry) Remove(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("session removed")
}
