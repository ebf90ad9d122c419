package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestID identifies one outstanding call proposal.
type RequestID string

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// Invite is one call proposal. Room is empty for direct calls.
// The record lives only until its first terminal event
// (accept, reject, timeout or cancel).
type Invite struct {
	ID        RequestID
	Caller    UserID
	Callee    UserID
	Room      RoomID
	CreatedAt time.Time
}
