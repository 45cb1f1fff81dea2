package core

import (
	"encoding/json"

	"github.com/mkoval/meet-signaling/internal/domain"
)

const (
	TypeRoomUsers   = "room_users"
	TypeUserJoined  = "user_joined"
	TypeUserLeft    = "user_left"
	TypeChatMessage = "chat_message"
)

// RoomUsers gives a joiner the full roster so it can render existing
// participants without racing the broadcast to the others.
type RoomUsers struct {
	Type  string          `json:"type"`
	Users []domain.Member `json:"users"`
}

func NewRoomUsers(users []domain.Member) RoomUsers {
	return RoomUsers{Type: TypeRoomUsers, Users: users}
}

type UserJoined struct {
	Type     string           `json:"type"`
	UserID   domain.SessionID `json:"userId"`
	UserName string           `json:"userName"`
	Users    []domain.Member  `json:"users"`
}

func NewUserJoined(joiner domain.Member, users []domain.Member) UserJoined {
	return UserJoined{Type: TypeUserJoined, UserID: joiner.ID, UserName: joiner.Name, Users: users}
}

type UserLeft struct {
	Type   string           `json:"type"`
	UserID domain.SessionID `json:"userId"`
	Users  []domain.Member  `json:"users"`
}

func NewUserLeft(departed domain.SessionID, users []domain.Member) UserLeft {
	return UserLeft{Type: TypeUserLeft, UserID: departed, Users: users}
}

// ChatMessage carries the client timestamp verbatim; an absent timestamp
// marshals as null, same as the relay always did.
type ChatMessage struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Sender    string           `json:"sender"`
	SenderID  domain.SessionID `json:"senderId"`
	Timestamp json.RawMessage  `json:"timestamp"`
}

func NewChatMessage(sender domain.Session, message string, ts json.RawMessage) ChatMessage {
	return ChatMessage{
		Type:      TypeChatMessage,
		Message:   message,
		Sender:    sender.Name,
		SenderID:  sender.ID,
		Timestamp: ts,
	}
}

// NewSignalForward rebuilds a point-to-point frame: same kind, opaque
// payload under the kind's own field, sender attached as "from".
func NewSignalForward(kind SignalKind, payload json.RawMessage, from domain.SessionID) map[string]any {
	return map[string]any{
		"type":              string(kind),
		kind.PayloadField(): payload,
		"from":              from,
	}
}
