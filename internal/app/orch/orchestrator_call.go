package orch

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/app"
	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// ProposeCall starts the invitation flow. An offline callee is answered
// with an unreachable event to the caller; throttled proposals are dropped.
func (o *Orchestrator) ProposeCall(sid core.SessionID, caller, callee domain.UserID, room domain.RoomID) {
	_, err := o.Invites.Propose(sid, caller, callee, room)
	switch {
	case errors.Is(err, app.ErrUnreachable):
		o.ToSession(sid, core.CallUnreachableEvent{
			Type: core.EvCallUnreachable,
			To:   callee,
		})
	case errors.Is(err, app.ErrThrottled):
		// Limiter protects the callee; the caller gets no refusal event.
	}
}

func (o *Orchestrator) AcceptCall(id domain.RequestID, accepter domain.UserID) {
	o.Invites.Accept(id, accepter)
}

func (o *Orchestrator) RejectCall(id domain.RequestID, rejecter domain.UserID) {
	o.Invites.Reject(id, rejecter)
}

// ForwardSignal relays a handshake payload, tagging it with the sender's
// bound identity (best effort: the claimed identity is only used when the
// session never registered one).
func (o *Orchestrator) ForwardSignal(sid core.SessionID, claimed domain.UserID, target string, signal json.RawMessage) {
	uid, _ := o.IdentityFor(sid)
	if uid == "" {
		uid = claimed
	}
	o.Relay.Forward(sid, uid, target, signal)
}

// Hangup tears down the session's peer links and cancels any invitation it
// is a party to. With a room id the hungup event fans out to the room;
// otherwise to each peer the session was linked with.
func (o *Orchestrator) Hangup(sid core.SessionID, room domain.RoomID) {
	o.Invites.DropBySession(sid)
	peers := o.Relay.RemovePeer(sid)

	uid, _ := o.IdentityFor(sid)
	ev := core.CallHungupEvent{
		Type:         core.EvCallHungup,
		From:         uid,
		FromSocketID: sid,
	}
	if room != "" {
		o.ToRoomExcept(room, sid, ev)
		return
	}
	for _, peer := range peers {
		o.ToSession(peer, ev)
	}
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Int("peers", len(peers)).Msg("hangup")
}
