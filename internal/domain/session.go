// Package domain contains entities without logic, just meta-data.
package domain

import "fmt"

const MaxDisplayNameLen = 64

type (
	// SessionID identifies one live transport connection. It is minted by
	// the transport adapter at upgrade time and never reused.
	SessionID string
	// RoomID keys a runtime broadcast group. It normally corresponds to a
	// persisted room owned by the REST backend, but the relay never checks.
	RoomID string
)

// Session is the per-connection state tracked by the session registry.
// Room stays empty until a join succeeds and is cleared on leave.
type Session struct {
	ID   SessionID
	Name string
	Room RoomID
}

// Member is one roster entry as clients see it.
type Member struct {
	ID   SessionID `json:"id"`
	Name string    `json:"name"`
}

// DefaultDisplayName derives the placeholder name used until the client
// supplies one.
func DefaultDisplayName(sid SessionID) string {
	short := string(sid)
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("User-%s", short)
}

// ClampDisplayName trims oversized names instead of rejecting them; a noisy
// client should not lose its join over a long nickname.
func ClampDisplayName(name string) string {
	if len(name) > MaxDisplayNameLen {
		return name[:MaxDisplayNameLen]
	}
	return name
}
