package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

var (
	// ErrUnreachable means the callee has no live session. Expected
	// outcome, the caller UI treats "user offline" as a normal case.
	ErrUnreachable = errors.New("callee unreachable")
	ErrThrottled   = errors.New("call requests throttled")
)

// invite pairs the proposal record with its timeout handle. The timer is
// stopped on every terminal transition; exactly one of stop-or-fire wins.
type invite struct {
	rec       domain.Invite
	callerSID core.SessionID
	calleeSID core.SessionID
	timer     *time.Timer
}

// InviteManager tracks outstanding call proposals.
// State machine per invite: Proposed -> Accepted | Rejected | TimedOut |
// Cancelled, all terminal. Any action on an unknown request id is a silent
// no-op; that is how near-simultaneous accept/timeout/reject races resolve.
type InviteManager struct {
	mu      sync.Mutex
	pending map[domain.RequestID]*invite

	registry *Registry
	limiter  *CallRateLimiter
	timeout  time.Duration

	// Emitter is set once at wiring, before any connection is accepted.
	Emitter core.Emitter
}

func NewInviteManager(registry *Registry, limiter *CallRateLimiter, timeout time.Duration) *InviteManager {
	return &InviteManager{
		pending:  make(map[domain.RequestID]*invite),
		registry: registry,
		limiter:  limiter,
		timeout:  timeout,
	}
}

// Propose resolves the callee, stores the record, notifies the callee and
// arms the timeout. An offline callee creates no record and notifies no one.
func (m *InviteManager) Propose(callerSID core.SessionID, caller, callee domain.UserID, room domain.RoomID) (domain.RequestID, error) {
	if m.limiter != nil && !m.limiter.Allow(caller) {
		log.Warn().Str("module", "app.invites").Str("caller", string(caller)).Msg("call request throttled")
		return "", ErrThrottled
	}

	calleeSID, ok := m.registry.Resolve(callee)
	if !ok {
		log.Info().Str("module", "app.invites").Str("callee", string(callee)).Msg("callee offline")
		return "", ErrUnreachable
	}

	id := domain.NewRequestID()
	inv := &invite{
		rec: domain.Invite{
			ID:        id,
			Caller:    caller,
			Callee:    callee,
			Room:      room,
			CreatedAt: time.Now(),
		},
		callerSID: callerSID,
		calleeSID: calleeSID,
	}

	m.mu.Lock()
	m.pending[id] = inv
	inv.timer = time.AfterFunc(m.timeout, func() { m.expire(id) })
	m.mu.Unlock()

	m.Emitter.ToSession(calleeSID, core.CallReceivedEvent{
		Type:         core.EvCallReceived,
		From:         caller,
		FromSocketID: callerSID,
		Room:         room,
		RequestID:    id,
	})
	log.Info().Str("module", "app.invites").Str("request_id", string(id)).Str("caller", string(caller)).Str("callee", string(callee)).Msg("proposed call")
	return id, nil
}

// Accept is valid only from the stored callee. The caller is told to start
// the handshake, tagged with the accepter's current session id.
func (m *InviteManager) Accept(id domain.RequestID, accepter domain.UserID) {
	inv, ok := m.take(id, accepter)
	if !ok {
		return
	}
	sid := inv.calleeSID
	if cur, ok := m.registry.Resolve(accepter); ok {
		sid = cur
	}
	m.Emitter.ToSession(inv.callerSID, core.CallAcceptedEvent{
		Type:         core.EvCallAccepted,
		From:         accepter,
		FromSocketID: sid,
	})
	log.Info().Str("module", "app.invites").Str("request_id", string(id)).Msg("call accepted")
}

func (m *InviteManager) Reject(id domain.RequestID, rejecter domain.UserID) {
	inv, ok := m.take(id, rejecter)
	if !ok {
		return
	}
	m.Emitter.ToSession(inv.callerSID, core.CallRejectedEvent{
		Type: core.EvCallRejected,
		From: rejecter,
	})
	log.Info().Str("module", "app.invites").Str("request_id", string(id)).Msg("call rejected")
}

// take removes the record if it exists and the actor is the stored callee,
// stopping the timer. A false return means the invite already hit a
// terminal state (or never existed) and the action is a no-op.
func (m *InviteManager) take(id domain.RequestID, actor domain.UserID) (*invite, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.pending[id]
	if !ok {
		return nil, false
	}
	if inv.rec.Callee != actor {
		log.Warn().Str("module", "app.invites").Str("request_id", string(id)).Str("actor", string(actor)).Msg("actor is not the callee")
		return nil, false
	}
	delete(m.pending, id)
	inv.timer.Stop()
	return inv, true
}

func (m *InviteManager) expire(id domain.RequestID) {
	m.mu.Lock()
	inv, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()
	if !ok {
		// Lost the race against a terminal transition.
		return
	}
	m.Emitter.ToSession(inv.callerSID, core.CallTimeoutEvent{
		Type: core.EvCallTimeout,
		To:   inv.rec.Callee,
	})
	m.Emitter.ToSession(inv.calleeSID, core.CallTimeoutReceivedEvent{
		Type: core.EvCallTimeoutReceived,
	})
	log.Info().Str("module", "app.invites").Str("request_id", string(id)).Msg("call timed out")
}

// DropBySession cancels every pending invite the session is a party to.
// The caller's disconnect (or hangup) reads to the callee as the caller
// giving up; the callee's disconnect reads to the caller as no answer.
func (m *InviteManager) DropBySession(sid core.SessionID) {
	m.mu.Lock()
	var dropped []*invite
	for id, inv := range m.pending {
		if inv.callerSID == sid || inv.calleeSID == sid {
			delete(m.pending, id)
			inv.timer.Stop()
			dropped = append(dropped, inv)
		}
	}
	m.mu.Unlock()

	for _, inv := range dropped {
		if inv.callerSID == sid {
			m.Emitter.ToSession(inv.calleeSID, core.CallTimeoutReceivedEvent{
				Type: core.EvCallTimeoutReceived,
			})
		} else {
			m.Emitter.ToSession(inv.callerSID, core.CallTimeoutEvent{
				Type: core.EvCallTimeout,
				To:   inv.rec.Callee,
			})
		}
		log.Info().Str("module", "app.invites").Str("request_id", string(inv.rec.ID)).Str("sid", string(sid)).Msg("cancelled call for departed session")
	}
}

// PendingCount is used by tests and the stats surface.
func (m *InviteManager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
