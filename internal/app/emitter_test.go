package app

import (
	"encoding/json"
	"sync"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// captureEmitter records every event per session so tests can assert on
// exactly what was delivered and in which order.
type captureEmitter struct {
	mu       sync.Mutex
	events   map[core.SessionID][]any
	sessions map[core.SessionID]bool
}

func newCaptureEmitter(sids ...core.SessionID) *captureEmitter {
	e := &captureEmitter{
		events:   make(map[core.SessionID][]any),
		sessions: make(map[core.SessionID]bool),
	}
	for _, sid := range sids {
		e.sessions[sid] = true
	}
	return e
}

func (e *captureEmitter) ToSession(sid core.SessionID, v any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sessions[sid] {
		return false
	}
	e.events[sid] = append(e.events[sid], v)
	return true
}

func (e *captureEmitter) ToRoom(room domain.RoomID, v any)                              {}
func (e *captureEmitter) ToRoomExcept(room domain.RoomID, except core.SessionID, v any) {}
func (e *captureEmitter) ToAll(v any)                                                   {}

func (e *captureEmitter) HasSession(sid core.SessionID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[sid]
}

func (e *captureEmitter) sent(sid core.SessionID) []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]any, len(e.events[sid]))
	copy(out, e.events[sid])
	return out
}

// types lists the event type tags delivered to a session, in order.
func (e *captureEmitter) types(sid core.SessionID) []string {
	var out []string
	for _, v := range e.sent(sid) {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(b, &env); err != nil {
			continue
		}
		out = append(out, env.Type)
	}
	return out
}
