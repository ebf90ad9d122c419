package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// JoinRoom adds the session to the room and rebroadcasts presence: the
// room's own count to its members, the category stats to everyone.
func (o *Orchestrator) JoinRoom(sid core.SessionID, room domain.RoomID) {
	o.Presence.Join(sid, room)
	o.broadcastRoomCount(room)
	o.broadcastStats()
}

// GroupJoin announces the session to the room's video peers; each of them
// responds by creating an offer toward the new session id.
func (o *Orchestrator) GroupJoin(sid core.SessionID, room domain.RoomID) {
	if o.Presence.Join(sid, room) {
		o.broadcastRoomCount(room)
		o.broadcastStats()
	}
	uid, _ := o.IdentityFor(sid)
	o.ToRoomExcept(room, sid, core.PeerJoinedEvent{
		Type:     core.EvPeerJoined,
		UserID:   uid,
		SocketID: sid,
	})
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(room)).Msg("joined group video")
}

func (o *Orchestrator) broadcastRoomCount(room domain.RoomID) {
	o.ToRoom(room, core.RoomCountEvent{
		Type:  core.EvRoomUserCount,
		Room:  room,
		Count: o.Presence.Count(room),
	})
}

func (o *Orchestrator) broadcastStats() {
	o.ToAll(core.RoomStatsEvent{
		Type:  core.EvRoomStatsUpdate,
		Stats: o.Presence.Stats(),
	})
}
