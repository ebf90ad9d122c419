package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

func newTestTracker() *Tracker {
	return NewTracker(domain.DefaultCategories)
}

// Count must always equal the number of sessions whose room-set contains
// the room, through any sequence of joins and leaves.
func TestTrackerCountNeverDrifts(t *testing.T) {
	tr := newTestTracker()

	assert.Equal(t, 0, tr.Count("random"))

	tr.Join("x", "random")
	assert.Equal(t, 1, tr.Count("random"))

	tr.Join("y", "random")
	assert.Equal(t, 2, tr.Count("random"))

	tr.Leave("x", "random")
	assert.Equal(t, 1, tr.Count("random"))

	tr.Leave("x", "random") // already gone
	assert.Equal(t, 1, tr.Count("random"))

	tr.Leave("y", "random")
	assert.Equal(t, 0, tr.Count("random"))
}

func TestTrackerJoinIsIdempotent(t *testing.T) {
	tr := newTestTracker()

	assert.True(t, tr.Join("x", "career"))
	assert.False(t, tr.Join("x", "career"))
	assert.Equal(t, 1, tr.Count("career"))
}

func TestTrackerLeaveAllReturnsJoinedRooms(t *testing.T) {
	tr := newTestTracker()

	tr.Join("x", "r1")
	tr.Join("x", "r2")
	tr.Join("y", "r1")

	left := tr.LeaveAll("x")
	assert.ElementsMatch(t, []domain.RoomID{"r1", "r2"}, left)
	assert.Equal(t, 1, tr.Count("r1"))
	assert.Equal(t, 0, tr.Count("r2"))
	assert.Empty(t, tr.Rooms("x"))

	assert.Empty(t, tr.LeaveAll("x"))
}

func TestTrackerStatsCoverAllCategories(t *testing.T) {
	tr := newTestTracker()

	tr.Join("x", "random")
	tr.Join("y", "random")
	tr.Join("z", "stress")
	tr.Join("z", "not-a-category")

	stats := tr.Stats()
	assert.Equal(t, map[domain.RoomID]int{
		"stress":        1,
		"career":        0,
		"relationships": 0,
		"random":        2,
	}, stats)
}

func TestTrackerMembersIsSnapshot(t *testing.T) {
	tr := newTestTracker()
	tr.Join("x", "random")
	tr.Join("y", "random")

	members := tr.Members("random")
	tr.Leave("x", "random")

	// The snapshot taken before the leave is unaffected.
	assert.ElementsMatch(t, []core.SessionID{"x", "y"}, members)
	assert.ElementsMatch(t, []core.SessionID{"y"}, tr.Members("random"))
}
