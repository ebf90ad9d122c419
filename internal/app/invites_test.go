package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

func newTestInvites(timeout time.Duration, sids ...core.SessionID) (*InviteManager, *Registry, *captureEmitter) {
	registry := NewRegistry()
	emitter := newCaptureEmitter(sids...)
	m := NewInviteManager(registry, nil, timeout)
	m.Emitter = emitter
	return m, registry, emitter
}

func TestProposeOfflineCalleeIsUnreachable(t *testing.T) {
	m, _, emitter := newTestInvites(time.Second, "caller-sid")

	_, err := m.Propose("caller-sid", "alice", "bob", "random")
	assert.ErrorIs(t, err, ErrUnreachable)

	// No record, no notification to anyone.
	assert.Equal(t, 0, m.PendingCount())
	assert.Empty(t, emitter.types("caller-sid"))
}

func TestProposeNotifiesCallee(t *testing.T) {
	m, registry, emitter := newTestInvites(time.Second, "caller-sid", "callee-sid")
	registry.Register("bob", "callee-sid")

	id, err := m.Propose("caller-sid", "alice", "bob", "random")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sent := emitter.sent("callee-sid")
	require.Len(t, sent, 1)
	ev, ok := sent[0].(core.CallReceivedEvent)
	require.True(t, ok)
	assert.Equal(t, domain.UserID("alice"), ev.From)
	assert.Equal(t, core.SessionID("caller-sid"), ev.FromSocketID)
	assert.Equal(t, domain.RoomID("random"), ev.Room)
	assert.Equal(t, id, ev.RequestID)
}

// Reject then accept on the same request id must produce exactly one
// outcome notification; the second call is a no-op.
func TestTerminalTransitionIsIdempotent(t *testing.T) {
	m, registry, emitter := newTestInvites(time.Second, "caller-sid", "callee-sid")
	registry.Register("bob", "callee-sid")

	id, err := m.Propose("caller-sid", "alice", "bob", "")
	require.NoError(t, err)

	m.Reject(id, "bob")
	m.Accept(id, "bob")

	assert.Equal(t, []string{core.EvCallRejected}, emitter.types("caller-sid"))
	assert.Equal(t, 0, m.PendingCount())
}

func TestAcceptRequiresStoredCallee(t *testing.T) {
	m, registry, emitter := newTestInvites(time.Second, "caller-sid", "callee-sid")
	registry.Register("bob", "callee-sid")

	id, err := m.Propose("caller-sid", "alice", "bob", "")
	require.NoError(t, err)

	m.Accept(id, "mallory")
	assert.Equal(t, 1, m.PendingCount())
	assert.Empty(t, emitter.types("caller-sid"))

	m.Accept(id, "bob")
	assert.Equal(t, []string{core.EvCallAccepted}, emitter.types("caller-sid"))
}

func TestTimeoutNotifiesBothSidesDistinctly(t *testing.T) {
	m, registry, emitter := newTestInvites(20*time.Millisecond, "caller-sid", "callee-sid")
	registry.Register("bob", "callee-sid")

	_, err := m.Propose("caller-sid", "alice", "bob", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return m.PendingCount() == 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{core.EvCallTimeout}, emitter.types("caller-sid"))
	assert.Equal(t, []string{core.EvCallReceived, core.EvCallTimeoutReceived}, emitter.types("callee-sid"))
}

// Accepting before the timer fires must cancel it: no late timed-out
// notification after the call was resolved.
func TestAcceptCancelsPendingTimeout(t *testing.T) {
	m, registry, emitter := newTestInvites(50*time.Millisecond, "caller-sid", "callee-sid")
	registry.Register("bob", "callee-sid")

	id, err := m.Propose("caller-sid", "alice", "bob", "")
	require.NoError(t, err)

	m.Accept(id, "bob")

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, []string{core.EvCallAccepted}, emitter.types("caller-sid"))
	assert.Equal(t, []string{core.EvCallReceived}, emitter.types("callee-sid"))
}

func TestDropBySessionCancelsBothDirections(t *testing.T) {
	m, registry, emitter := newTestInvites(time.Second, "a-sid", "b-sid", "c-sid")
	registry.Register("bob", "b-sid")
	registry.Register("carol", "c-sid")

	// a calls bob; carol calls... a is anonymous here, so use two invites
	// with a-sid on opposite sides.
	_, err := m.Propose("a-sid", "alice", "bob", "")
	require.NoError(t, err)
	registry.Register("alice", "a-sid")
	_, err = m.Propose("c-sid", "carol", "alice", "")
	require.NoError(t, err)

	m.DropBySession("a-sid")

	assert.Equal(t, 0, m.PendingCount())
	// a was the caller toward bob: bob learns the caller gave up.
	assert.Contains(t, emitter.types("b-sid"), core.EvCallTimeoutReceived)
	// a was the callee for carol: carol learns there is no answer.
	assert.Contains(t, emitter.types("c-sid"), core.EvCallTimeout)
}

func TestProposeThrottled(t *testing.T) {
	registry := NewRegistry()
	emitter := newCaptureEmitter("caller-sid", "callee-sid")
	m := NewInviteManager(registry, NewCallRateLimiter(1, time.Minute), time.Second)
	m.Emitter = emitter
	registry.Register("bob", "callee-sid")

	_, err := m.Propose("caller-sid", "alice", "bob", "")
	require.NoError(t, err)
	_, err = m.Propose("caller-sid", "alice", "bob", "")
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, 1, m.PendingCount())
}
