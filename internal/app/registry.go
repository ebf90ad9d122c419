package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freetalk/signaling/internal/core"
	"github.com/freetalk/signaling/internal/domain"
)

// Registry maps durable identity to the one live transport session.
// Last registration wins: a user opening a new tab supersedes the stale one.
type Registry struct {
	mu    sync.RWMutex
	bySID map[core.SessionID]domain.UserID
	byUID map[domain.UserID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		bySID: make(map[core.SessionID]domain.UserID),
		byUID: make(map[domain.UserID]core.SessionID),
	}
}

func (r *Registry) Register(uid domain.UserID, sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byUID[uid]; ok && old != sid {
		delete(r.bySID, old)
		log.Info().Str("module", "app.registry").Str("uid", string(uid)).Str("old_sid", string(old)).Msg("superseded stale binding")
	}
	r.byUID[uid] = sid
	r.bySID[sid] = uid
	log.Info().Str("module", "app.registry").Str("uid", string(uid)).Str("sid", string(sid)).Msg("registered identity")
}

// Resolve returns the live session for an identity. Absent means offline,
// a normal outcome for callers, not a failure.
func (r *Registry) Resolve(uid domain.UserID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byUID[uid]
	return sid, ok
}

func (r *Registry) IdentityOf(sid core.SessionID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.bySID[sid]
	return uid, ok
}

// Unregister removes the binding only if it still points at this session,
// so a dying connection cannot evict its successor.
func (r *Registry) Unregister(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.bySID[sid]
	if !ok {
		return
	}
	delete(r.bySID, sid)
	if r.byUID[uid] == sid {
		delete(r.byUID, uid)
		log.Info().Str("module", "app.registry").Str("uid", string(uid)).Str("sid", string(sid)).Msg("unregistered identity")
	}
}
