package core

import (
	"encoding/json"

	"github.com/freetalk/signaling/internal/domain"
)

// Outbound event payloads. Field names follow the browser client's wire
// protocol, so every struct carries explicit json tags.

const (
	EvRegistrationComplete = "registration_complete"
	EvRoomUserCount        = "room_user_count"
	EvRoomStatsUpdate      = "room_stats_update"
	EvCallReceived         = "video-call:received"
	EvCallAccepted         = "video-call:accepted"
	EvCallRejected         = "video-call:rejected"
	EvCallTimeout          = "video-call:timeout"
	EvCallTimeoutReceived  = "video-call:timeout-received"
	EvCallUnreachable      = "video-call:unreachable"
	EvCallHungup           = "video-call:hungup"
	EvSignal               = "webrtc:signal"
	EvPeerJoined           = "group-video:user-joined"
)

type RegistrationCompleteEvent struct {
	Type     string    `json:"type"`
	SocketID SessionID `json:"socketId"`
}

type RoomCountEvent struct {
	Type  string        `json:"type"`
	Room  domain.RoomID `json:"roomId"`
	Count int           `json:"count"`
}

type RoomStatsEvent struct {
	Type  string                `json:"type"`
	Stats map[domain.RoomID]int `json:"stats"`
}

type CallReceivedEvent struct {
	Type         string           `json:"type"`
	From         domain.UserID    `json:"from"`
	FromSocketID SessionID        `json:"fromSocketId"`
	Room         domain.RoomID    `json:"roomId,omitempty"`
	RequestID    domain.RequestID `json:"requestId"`
}

type CallAcceptedEvent struct {
	Type         string        `json:"type"`
	From         domain.UserID `json:"from"`
	FromSocketID SessionID     `json:"fromSocketId"`
}

type CallRejectedEvent struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
}

// CallTimeoutEvent goes to the caller ("no answer from To");
// CallTimeoutReceivedEvent goes to the callee (caller gave up waiting).
// Distinct events so each side's UI can tell who timed out.
type CallTimeoutEvent struct {
	Type string        `json:"type"`
	To   domain.UserID `json:"to"`
}

type CallTimeoutReceivedEvent struct {
	Type string `json:"type"`
}

type CallUnreachableEvent struct {
	Type string        `json:"type"`
	To   domain.UserID `json:"to"`
}

type CallHungupEvent struct {
	Type         string        `json:"type"`
	From         domain.UserID `json:"from"`
	FromSocketID SessionID     `json:"fromSocketId"`
}

// SignalEvent forwards the handshake payload verbatim, tagged with the
// sender's identity and transport session id.
type SignalEvent struct {
	Type         string          `json:"type"`
	From         domain.UserID   `json:"from"`
	FromSocketID SessionID       `json:"fromSocketId"`
	Signal       json.RawMessage `json:"signal"`
}

type PeerJoinedEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	SocketID SessionID     `json:"socketId"`
}
