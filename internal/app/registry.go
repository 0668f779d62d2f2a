package app

import (
	"sync"
	"time"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	User  *domain.User
	Conn  core.SignalConnection
	Since time.Time
}

// Registry maps a live identity to exactly one authenticated connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.UID]*connEntry),
	}
}

// Register binds user to conn, replacing any previous binding. The previous
// connection is returned so the caller can decide what to do with it.
func (r *Registry) Register(user *domain.User, conn core.SignalConnection) (core.SignalConnection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, had := r.conns[user.UID]
	r.conns[user.UID] = &connEntry{User: user, Conn: conn, Since: time.Now()}
	log.Info().Str("module", "app.registry").Str("uid", string(user.UID)).Bool("superseded", had).Msg("bound connection")
	if !had || prev.Conn == conn {
		return nil, false
	}
	return prev.Conn, true
}

// Resolve returns the online user bound to uid together with its connection.
func (r *Registry) Resolve(uid domain.UID) (domain.User, core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[uid]; ok {
		return *e.User, e.Conn, true
	}
	return domain.User{}, nil, false
}

func (r *Registry) Lookup(uid domain.UID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[uid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Unregister removes the binding only if it still points at conn, so a late
// close of a superseded connection cannot clobber a fresher one.
func (r *Registry) Unregister(uid domain.UID, conn core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[uid]
	if !ok || e.Conn != conn {
		return false
	}
	delete(r.conns, uid)
	log.Info().Str("module", "app.registry").Str("uid", string(uid)).Msg("unbound connection")
	return true
}

func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Presence is a read-only view of one online user.
type Presence struct {
	User  domain.User `json:"user"`
	Since time.Time   `json:"since"`
}

// Snapshot lists online users; no transport handles leave the registry.
func (r *Registry) Snapshot() []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Presence, 0, len(r.conns))
	for _, e := range r.conns {
		out = append(out, Presence{User: *e.User, Since: e.Since})
	}
	return out
}
