package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/domain"
)

// JoinResult reports what a join actually did, so callers can tell an
// implicit room creation and an idempotent re-join apart from the normal case.
type JoinResult struct {
	Created bool            // room did not exist before this join
	Added   bool            // false when the session was already a member
	Members []domain.Member // roster after the join, insertion order
}

// LeaveResult carries the remaining roster so the caller can decide
// whether anyone is left to notify.
type LeaveResult struct {
	Removed bool
	Members []domain.Member // remaining roster; empty when the room is gone
}

// RoomRegistry owns the room id -> ordered member list mapping.
// Invariant: a room is present iff it has at least one member.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID][]domain.Member
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID][]domain.Member)}
}

// Join appends the member, creating the room on demand. Whether the room id
// matches an active persisted room was the REST layer's problem before the
// join event was ever sent; the relay does not re-check per message.
func (r *RoomRegistry) Join(room domain.RoomID, member domain.Member) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, exists := r.rooms[room]
	for _, m := range members {
		if m.ID == member.ID {
			return JoinResult{Members: snapshot(members)}
		}
	}

	members = append(members, member)
	r.rooms[room] = members
	if !exists {
		log.Debug().Str("module", "app.rooms").Str("room", string(room)).Msg("room created on first join")
	}
	return JoinResult{Created: !exists, Added: true, Members: snapshot(members)}
}

// Leave removes the member if present and deletes the room once empty.
func (r *RoomRegistry) Leave(room domain.RoomID, sid domain.SessionID) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return LeaveResult{}
	}

	idx := -1
	for i, m := range members {
		if m.ID == sid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return LeaveResult{Members: snapshot(members)}
	}

	members = append(members[:idx], members[idx+1:]...)
	if len(members) == 0 {
		delete(r.rooms, room)
		log.Debug().Str("module", "app.rooms").Str("room", string(room)).Msg("room drained, deleting")
		return LeaveResult{Removed: true}
	}
	r.rooms[room] = members
	return LeaveResult{Removed: true, Members: snapshot(members)}
}

// MembersOf returns the ordered roster, or nil for an absent room.
func (r *RoomRegistry) MembersOf(room domain.RoomID) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.rooms[room])
}

// Contains reports whether the room currently exists in the registry.
func (r *RoomRegistry) Contains(room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room]
	return ok
}

// Count returns the number of live rooms.
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func snapshot(members []domain.Member) []domain.Member {
	if members == nil {
		return nil
	}
	out := make([]domain.Member, len(members))
	copy(out, members)
	return out
}
