package core

import "github.com/freetalk/signaling/internal/domain"

// Emitter fans events out to live connections. Delivery is fire-and-forget:
// a dropped frame is logged, never surfaced to the triggering handler.
// Fan-out iterates a snapshot of members, not a live view.
type Emitter interface {
	ToSession(sid SessionID, v any) bool
	ToRoom(room domain.RoomID, v any)
	ToRoomExcept(room domain.RoomID, except SessionID, v any)
	ToAll(v any)
	HasSession(sid SessionID) bool
}
