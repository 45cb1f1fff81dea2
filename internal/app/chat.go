package app

import (
	"encoding/json"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
)

// ChatRelay fans a message out to every member of the sender's current
// room, sender included: the relay is the single source of delivery, the
// client never echoes locally.
type ChatRelay struct {
	sessions *SessionRegistry
	rooms    *RoomRegistry
}

func NewChatRelay(sessions *SessionRegistry, rooms *RoomRegistry) *ChatRelay {
	return &ChatRelay{sessions: sessions, rooms: rooms}
}

// Broadcast is a no-op when the sender has no room. The timestamp is the
// client's own and passes through verbatim.
func (c *ChatRelay) Broadcast(sender domain.SessionID, message string, ts json.RawMessage) {
	sess, ok := c.sessions.Lookup(sender)
	if !ok || sess.Room == "" {
		return
	}
	out := core.NewChatMessage(sess, message, ts)
	for _, m := range c.rooms.MembersOf(sess.Room) {
		if conn, ok := c.sessions.Conn(m.ID); ok {
			emit(core.TypeChatMessage, m.ID, conn, out)
		}
	}
}
