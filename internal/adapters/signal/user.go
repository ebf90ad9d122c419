package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

func (ctl *SignalWSController) handleRegister(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type registerPayload struct {
		Type     string `json:"type"`
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		return
	}
	if p.UserID == "" || len(p.UserID) > domain.MaxUserIDLen {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("register: missing or oversized userId")
		return
	}
	if len(p.Username) > domain.MaxUsernameLen {
		p.Username = p.Username[:domain.MaxUsernameLen]
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("uid", p.UserID).Msg("register user")
	ctl.Orch.RegisterIdentity(sid, domain.UserID(p.UserID), p.Username)

	ctl.sendJSON(conn, core.RegistrationCompleteEvent{
		Type:     core.EvRegistrationComplete,
		SocketID: sid,
	})
}
