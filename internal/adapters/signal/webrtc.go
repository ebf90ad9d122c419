package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// handleWebRTCSignal relays one opaque offer/answer/candidate payload.
// The payload is never decoded here beyond the routing fields; the relay
// reads only the discriminator it needs for candidate buffering.
func (ctl *SignalWSController) handleWebRTCSignal(
	sid core.SessionID,
	data []byte,
) {
	type signalPayload struct {
		Type   string          `json:"type"`
		To     string          `json:"to"`
		From   string          `json:"from"`
		Signal json.RawMessage `json:"signal"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad signal payload")
		return
	}
	if p.To == "" || len(p.Signal) == 0 {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("signal: missing target or body")
		return
	}

	ctl.Orch.ForwardSignal(sid, domain.UserID(p.From), p.To, p.Signal)
}
