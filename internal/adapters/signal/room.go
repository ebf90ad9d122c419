package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

func (ctl *SignalWSController) handleJoinRoom(
	sid core.SessionID,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.Room == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join: missing room")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join room")
	ctl.Orch.JoinRoom(sid, domain.RoomID(p.Room))
}

func (ctl *SignalWSController) handleGroupJoin(
	sid core.SessionID,
	data []byte,
) {
	type groupJoinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p groupJoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad group join payload")
		return
	}
	if p.Room == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("group join: missing room")
		return
	}

	ctl.Orch.GroupJoin(sid, domain.RoomID(p.Room))
}
