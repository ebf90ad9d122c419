package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// Tracker maintains room membership: room -> session set and the reverse
// index. Occupancy is always derived from the sets, never stored, so the
// displayed count cannot drift from membership.
type Tracker struct {
	mu         sync.RWMutex
	rooms      map[domain.RoomID]map[core.SessionID]struct{}
	joined     map[core.SessionID]map[domain.RoomID]struct{}
	categories []domain.RoomID
}

func NewTracker(categories []domain.RoomID) *Tracker {
	return &Tracker{
		rooms:      make(map[domain.RoomID]map[core.SessionID]struct{}),
		joined:     make(map[core.SessionID]map[domain.RoomID]struct{}),
		categories: categories,
	}
}

// Join adds the session to the room. Joining twice is a no-op;
// the return value reports whether membership actually changed.
func (t *Tracker) Join(sid core.SessionID, room domain.RoomID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rooms[room]; !ok {
		t.rooms[room] = make(map[core.SessionID]struct{})
	}
	if _, ok := t.rooms[room][sid]; ok {
		return false
	}
	t.rooms[room][sid] = struct{}{}
	if _, ok := t.joined[sid]; !ok {
		t.joined[sid] = make(map[domain.RoomID]struct{})
	}
	t.joined[sid][room] = struct{}{}
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("room", string(room)).Msg("joined room")
	return true
}

func (t *Tracker) Leave(sid core.SessionID, room domain.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveLocked(sid, room)
}

// LeaveAll clears every membership of the session and returns the rooms
// it left. Called by the coordinator on disconnect.
func (t *Tracker) LeaveAll(sid core.SessionID) []domain.RoomID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.RoomID, 0, len(t.joined[sid]))
	for room := range t.joined[sid] {
		out = append(out, room)
	}
	for _, room := range out {
		t.leaveLocked(sid, room)
	}
	return out
}

func (t *Tracker) leaveLocked(sid core.SessionID, room domain.RoomID) {
	if members, ok := t.rooms[room]; ok {
		delete(members, sid)
		if len(members) == 0 {
			delete(t.rooms, room)
		}
	}
	if rooms, ok := t.joined[sid]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(t.joined, sid)
		}
	}
}

func (t *Tracker) Count(room domain.RoomID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[room])
}

// Members returns a snapshot of the room's sessions, safe to iterate
// while handlers mutate membership.
func (t *Tracker) Members(room domain.RoomID) []core.SessionID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.SessionID, 0, len(t.rooms[room]))
	for sid := range t.rooms[room] {
		out = append(out, sid)
	}
	return out
}

// Rooms returns a snapshot of the rooms the session has joined.
func (t *Tracker) Rooms(sid core.SessionID) []domain.RoomID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(t.joined[sid]))
	for room := range t.joined[sid] {
		out = append(out, room)
	}
	return out
}

// Stats reports occupancy per category room for the landing surface.
// Every category is present in the result, zero when empty.
func (t *Tracker) Stats() map[domain.RoomID]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	stats := make(map[domain.RoomID]int, len(t.categories))
	for _, room := range t.categories {
		stats[room] = len(t.rooms[room])
	}
	return stats
}
