package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

const (
	signalOffer     = "offer"
	signalAnswer    = "answer"
	signalCandidate = "candidate"
)

// pairKey identifies one direction of a peer link: payloads flowing from
// one session toward another.
type pairKey struct {
	to   core.SessionID
	from core.SessionID
}

// peerLink buffers candidates that arrive before a remote description has
// been forwarded for the pair. Cleared once the description goes out.
type peerLink struct {
	described bool
	pending   []core.SignalEvent
}

// Relay forwards opaque handshake payloads between two sessions. It never
// inspects the payload beyond the type discriminator needed for buffering.
type Relay struct {
	mu    sync.Mutex
	links map[pairKey]*peerLink

	registry *Registry

	// Emitter is set once at wiring, before any connection is accepted.
	Emitter core.Emitter
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{
		links:    make(map[pairKey]*peerLink),
		registry: registry,
	}
}

// Forward delivers the signal verbatim to the target, tagged with the
// sender. The target may be a durable identity or a raw session id (used
// once a handshake is underway and both sides know each other's session).
// A candidate ahead of the pair's first description is buffered, then
// flushed in arrival order right after the description goes out.
func (r *Relay) Forward(fromSID core.SessionID, fromUID domain.UserID, target string, signal json.RawMessage) {
	toSID, ok := r.registry.Resolve(domain.UserID(target))
	if !ok {
		toSID = core.SessionID(target)
	}
	if !r.Emitter.HasSession(toSID) {
		// Target offline or already gone: expected, drop silently.
		log.Debug().Str("module", "app.relay").Str("target", target).Msg("signal target not connected")
		return
	}

	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(signal, &disc); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("sid", string(fromSID)).Msg("undecodable signal discriminator")
		return
	}

	ev := core.SignalEvent{
		Type:         core.EvSignal,
		From:         fromUID,
		FromSocketID: fromSID,
		Signal:       signal,
	}

	key := pairKey{to: toSID, from: fromSID}

	r.mu.Lock()
	link, ok := r.links[key]
	if !ok {
		link = &peerLink{}
		r.links[key] = link
	}

	if disc.Type == signalCandidate && !link.described {
		link.pending = append(link.pending, ev)
		r.mu.Unlock()
		log.Debug().Str("module", "app.relay").Str("to", string(toSID)).Str("from", string(fromSID)).Msg("buffered early candidate")
		return
	}

	deliver := []core.SignalEvent{ev}
	if disc.Type == signalOffer || disc.Type == signalAnswer {
		link.described = true
		deliver = append(deliver, link.pending...)
		link.pending = nil
	}
	r.mu.Unlock()

	for _, out := range deliver {
		r.Emitter.ToSession(toSID, out)
	}
}

// RemovePeer tears down every link referencing the session, from either
// side, and returns the distinct sessions it was linked with. Idempotent:
// a disconnect racing an explicit hangup is harmless.
func (r *Relay) RemovePeer(sid core.SessionID) []core.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[core.SessionID]struct{})
	for key := range r.links {
		if key.to == sid {
			seen[key.from] = struct{}{}
			delete(r.links, key)
		} else if key.from == sid {
			seen[key.to] = struct{}{}
			delete(r.links, key)
		}
	}
	peers := make([]core.SessionID, 0, len(seen))
	for peer := range seen {
		peers = append(peers, peer)
	}
	if len(peers) > 0 {
		log.Info().Str("module", "app.relay").Str("sid", string(sid)).Int("links", len(peers)).Msg("tore down peer links")
	}
	return peers
}
