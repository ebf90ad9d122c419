package orch

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/app"
	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// Connection is the server-side handle for one live transport session.
// The orchestrator owns these records exclusively; every other component
// references a connection only by its session id.
type Connection struct {
	SID      core.SessionID
	Signal   core.SignalConnection
	Identity domain.UserID
	Username string
	cancel   context.CancelFunc
}

// Orchestrator binds registry, presence, invites and relay together over
// the connection lifecycle. It guarantees that when a transport connection
// drops, all derived state referencing it is purged, never left dangling.
type Orchestrator struct {
	mu    sync.RWMutex
	conns map[core.SessionID]*Connection

	Registry *app.Registry
	Presence *app.Tracker
	Invites  *app.InviteManager
	Relay    *app.Relay
}

func New(registry *app.Registry, presence *app.Tracker, invites *app.InviteManager, relay *app.Relay) *Orchestrator {
	o := &Orchestrator{
		conns:    make(map[core.SessionID]*Connection),
		Registry: registry,
		Presence: presence,
		Invites:  invites,
		Relay:    relay,
	}
	invites.Emitter = o
	relay.Emitter = o
	return o
}

// OnConnect records the new session. When the client presented an identity
// at connect time (a reconnect), the binding happens immediately; otherwise
// it waits for an explicit register-user message.
func (o *Orchestrator) OnConnect(sid core.SessionID, conn core.SignalConnection, uid domain.UserID, username string, cancel context.CancelFunc) {
	o.mu.Lock()
	o.conns[sid] = &Connection{
		SID:      sid,
		Signal:   conn,
		Identity: uid,
		Username: username,
		cancel:   cancel,
	}
	o.mu.Unlock()

	if uid != "" {
		o.Registry.Register(uid, sid)
	}
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("uid", string(uid)).Msg("connected")
}

// RegisterIdentity binds a durable identity to an already-open session
// (anonymous-then-identified flow).
func (o *Orchestrator) RegisterIdentity(sid core.SessionID, uid domain.UserID, username string) {
	o.mu.Lock()
	if c, ok := o.conns[sid]; ok {
		c.Identity = uid
		c.Username = username
	}
	o.mu.Unlock()
	o.Registry.Register(uid, sid)
}

func (o *Orchestrator) IdentityFor(sid core.SessionID) (domain.UserID, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if c, ok := o.conns[sid]; ok {
		return c.Identity, c.Username
	}
	return "", ""
}

// Disconnect drives the teardown state machine: post-departure occupancy
// broadcasts while memberships are still readable, then full cleanup.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	o.OnDisconnecting(sid)
	o.OnGone(sid)
}

// OnDisconnecting broadcasts each joined room's occupancy with the
// departing session already excluded. Runs before memberships are cleared;
// removal-before-announcement avoids counting the leaving party.
func (o *Orchestrator) OnDisconnecting(sid core.SessionID) {
	for _, room := range o.Presence.Rooms(sid) {
		count := o.Presence.Count(room) - 1
		if count < 0 {
			count = 0
		}
		o.ToRoomExcept(room, sid, core.RoomCountEvent{
			Type:  core.EvRoomUserCount,
			Room:  room,
			Count: count,
		})
	}
}

// OnGone purges all derived state. Every step runs even if another one
// panics: nobody is waiting on a disconnect, so failures are only logged.
func (o *Orchestrator) OnGone(sid core.SessionID) {
	steps := []struct {
		name string
		fn   func()
	}{
		{"unregister", func() { o.Registry.Unregister(sid) }},
		{"leave_rooms", func() { o.Presence.LeaveAll(sid) }},
		{"drop_invites", func() { o.Invites.DropBySession(sid) }},
		{"remove_peer", func() { o.Relay.RemovePeer(sid) }},
	}
	for _, step := range steps {
		o.runStep(sid, step.name, step.fn)
	}

	o.mu.Lock()
	c, ok := o.conns[sid]
	delete(o.conns, sid)
	o.mu.Unlock()
	if ok && c.cancel != nil {
		c.cancel()
	}

	o.broadcastStats()
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Msg("gone")
}

func (o *Orchestrator) runStep(sid core.SessionID, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "app.orch").Str("sid", string(sid)).Str("step", name).Interface("panic", r).Msg("cleanup step failed")
		}
	}()
	fn()
}
