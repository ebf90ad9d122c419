package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// callPayload covers request/accept/reject: {to, from, roomId, requestId}.
// RequestID is empty on the initial request.
type callPayload struct {
	Type      string `json:"type"`
	To        string `json:"to"`
	From      string `json:"from"`
	Room      string `json:"roomId"`
	RequestID string `json:"requestId"`
}

func (ctl *SignalWSController) decodeCall(sid core.SessionID, data []byte) (callPayload, bool) {
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad call payload")
		return p, false
	}
	return p, true
}

// actor returns the identity acting on this session, preferring the bound
// one over the claimed one from the payload.
func (ctl *SignalWSController) actor(sid core.SessionID, claimed string) domain.UserID {
	if uid, _ := ctl.Orch.IdentityFor(sid); uid != "" {
		return uid
	}
	return domain.UserID(claimed)
}

func (ctl *SignalWSController) handleCallRequest(sid core.SessionID, data []byte) {
	p, ok := ctl.decodeCall(sid, data)
	if !ok {
		return
	}
	if p.To == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("call request: missing target")
		return
	}
	ctl.Orch.ProposeCall(sid, ctl.actor(sid, p.From), domain.UserID(p.To), domain.RoomID(p.Room))
}

func (ctl *SignalWSController) handleCallAccept(sid core.SessionID, data []byte) {
	p, ok := ctl.decodeCall(sid, data)
	if !ok {
		return
	}
	if p.RequestID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("call accept: missing requestId")
		return
	}
	ctl.Orch.AcceptCall(domain.RequestID(p.RequestID), ctl.actor(sid, p.From))
}

func (ctl *SignalWSController) handleCallReject(sid core.SessionID, data []byte) {
	p, ok := ctl.decodeCall(sid, data)
	if !ok {
		return
	}
	if p.RequestID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("call reject: missing requestId")
		return
	}
	ctl.Orch.RejectCall(domain.RequestID(p.RequestID), ctl.actor(sid, p.From))
}

func (ctl *SignalWSController) handleHangup(sid core.SessionID, data []byte) {
	p, ok := ctl.decodeCall(sid, data)
	if !ok {
		return
	}
	ctl.Orch.Hangup(sid, domain.RoomID(p.Room))
}
