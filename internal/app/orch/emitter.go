package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// The orchestrator is the process's core.Emitter: it is the only component
// that can turn a session id back into a transport connection. Sends are
// fire-and-forget; a full send buffer drops the frame with a log line.

func (o *Orchestrator) ToSession(sid core.SessionID, v any) bool {
	o.mu.RLock()
	c, ok := o.conns[sid]
	o.mu.RUnlock()
	if !ok {
		return false
	}
	o.emit(c, v)
	return true
}

func (o *Orchestrator) ToRoom(room domain.RoomID, v any) {
	for _, sid := range o.Presence.Members(room) {
		o.ToSession(sid, v)
	}
}

func (o *Orchestrator) ToRoomExcept(room domain.RoomID, except core.SessionID, v any) {
	for _, sid := range o.Presence.Members(room) {
		if sid == except {
			continue
		}
		o.ToSession(sid, v)
	}
}

func (o *Orchestrator) ToAll(v any) {
	o.mu.RLock()
	conns := make([]*Connection, 0, len(o.conns))
	for _, c := range o.conns {
		conns = append(conns, c)
	}
	o.mu.RUnlock()
	for _, c := range conns {
		o.emit(c, v)
	}
}

func (o *Orchestrator) HasSession(sid core.SessionID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.conns[sid]
	return ok
}

func (o *Orchestrator) emit(c *Connection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("emit marshal")
		return
	}
	if err := c.Signal.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("sid", string(c.SID)).Msg("emit dropped frame")
	}
}
