package app

import (
	"sync"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
)

// SessionTable indexes non-terminal sessions by call id and by participant.
// At most one session may reference any identity.
type SessionTable struct {
	mu    sync.RWMutex
	byID  map[domain.CallID]*core.Session
	byUID map[domain.UID]domain.CallID
}

func NewSessionTable() *SessionTable {
	return &SessionTable{
		byID:  make(map[domain.CallID]*core.Session),
		byUID: make(map[domain.UID]domain.CallID),
	}
}

// Busy reports whether any of uids already takes part in a session.
func (t *SessionTable) Busy(uids ...domain.UID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, u := range uids {
		if _, ok := t.byUID[u]; ok {
			return true
		}
	}
	return false
}

// Reserve inserts s unless either party is already busy or the id is taken.
func (t *SessionTable) Reserve(s *core.Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[s.ID]; ok {
		return core.ConflictError("call id in use")
	}
	if _, ok := t.byUID[s.Caller.UID]; ok {
		return core.ConflictError("user_busy")
	}
	if _, ok := t.byUID[s.Callee.UID]; ok {
		return core.ConflictError("user_busy")
	}
	t.byID[s.ID] = s
	t.byUID[s.Caller.UID] = s.ID
	t.byUID[s.Callee.UID] = s.ID
	return nil
}

func (t *SessionTable) Get(id domain.CallID) (*core.Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byID[id]
	return s, ok
}

// Remove drops the session and releases both participants.
func (t *SessionTable) Remove(id domain.CallID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byID[id]
	if !ok {
		return false
	}
	delete(t.byID, id)
	for _, u := range []domain.UID{s.Caller.UID, s.Callee.UID} {
		if t.byUID[u] == id {
			delete(t.byUID, u)
		}
	}
	return true
}

// ByIdentity returns the sessions referencing uid.
func (t *SessionTable) ByIdentity(uid domain.UID) []*core.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byUID[uid]
	if !ok {
		return nil
	}
	if s, ok := t.byID[id]; ok {
		return []*core.Session{s}
	}
	return nil
}

func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

func (t *SessionTable) Snapshot() []core.SessionView {
	t.mu.RLock()
	sessions := make([]*core.Session, 0, len(t.byID))
	for _, s := range t.byID {
		sessions = append(sessions, s)
	}
	t.mu.RUnlock()

	out := make([]core.SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.View())
	}
	return out
}
