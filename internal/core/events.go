package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkoval/meet-signaling/internal/domain"
)

// SignalKind enumerates the point-to-point signaling message kinds.
type SignalKind string

const (
	SignalOffer        SignalKind = "offer"
	SignalAnswer       SignalKind = "answer"
	SignalICECandidate SignalKind = "ice_candidate"
)

// PayloadField names the JSON field carrying the opaque blob for a kind.
func (k SignalKind) PayloadField() string {
	switch k {
	case SignalOffer:
		return "offer"
	case SignalAnswer:
		return "answer"
	case SignalICECandidate:
		return "candidate"
	}
	return ""
}

var ErrUnknownEvent = errors.New("unknown event type")

// ClientEvent is the closed set of inbound events a connection may emit.
// Dispatch happens through a single type switch in the transport adapter,
// so adding a kind here forces the adapter to handle it.
type ClientEvent interface{ clientEvent() }

type JoinRoom struct {
	RoomID domain.RoomID
	Name   string
}

type LeaveRoom struct {
	RoomID domain.RoomID
}

type Signal struct {
	Kind    SignalKind
	Payload json.RawMessage
	To      domain.SessionID
}

type Chat struct {
	Message   string
	Timestamp json.RawMessage
}

func (JoinRoom) clientEvent()  {}
func (LeaveRoom) clientEvent() {}
func (Signal) clientEvent()    {}
func (Chat) clientEvent()      {}

// envelope covers every inbound field; requirements are checked per kind.
type envelope struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId"`
	UserName  string          `json:"userName"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
	To        string          `json:"to"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// ParseClientEvent validates a raw frame at the boundary so nothing
// malformed reaches the relay core. Signaling payloads stay opaque:
// presence is checked, content never is.
func ParseClientEvent(data []byte) (ClientEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}

	switch env.Type {
	case "join_room":
		if env.RoomID == "" {
			return nil, errors.New("join_room: missing roomId")
		}
		return JoinRoom{RoomID: domain.RoomID(env.RoomID), Name: env.UserName}, nil
	case "leave_room":
		if env.RoomID == "" {
			return nil, errors.New("leave_room: missing roomId")
		}
		return LeaveRoom{RoomID: domain.RoomID(env.RoomID)}, nil
	case "offer":
		return signalEvent(SignalOffer, env.Offer, env.To)
	case "answer":
		return signalEvent(SignalAnswer, env.Answer, env.To)
	case "ice_candidate":
		return signalEvent(SignalICECandidate, env.Candidate, env.To)
	case "chat_message":
		if env.Message == "" {
			return nil, errors.New("chat_message: missing message")
		}
		return Chat{Message: env.Message, Timestamp: env.Timestamp}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

func signalEvent(kind SignalKind, payload json.RawMessage, to string) (ClientEvent, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%s: missing %s", kind, kind.PayloadField())
	}
	if to == "" {
		return nil, fmt.Errorf("%s: missing to", kind)
	}
	return Signal{Kind: kind, Payload: payload, To: domain.SessionID(to)}, nil
}
