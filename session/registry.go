package session

import (
	"errors"
	"sync"
)

// ErrSessionActive is returned when a session already exists for the
// (user, scope) key. The existing session is left untouched.
var ErrSessionActive = errors.New("session: already active for this user and scope")

// Registry enforces at most one active session per (user, scope) key.
// It owns session lifetimes: a session is inserted atomically at
// creation and removed when it reaches a terminal state.
type Registry struct {
	mu     sync.Mutex
	active map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*Session)}
}

func sessionKey(userID, scopeID string) string {
	return userID + ":" + scopeID
}

// acquire atomically inserts a session, rejecting an occupied key.
func (r *Registry) acquire(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey(s.UserID, s.ScopeID)
	if _, ok := r.active[key]; ok {
		return ErrSessionActive
	}
	r.active[key] = s
	return nil
}

// release removes a session, but only if it still owns its key. A
// session that was already replaced must not evict its successor.
func (r *Registry) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey(s.UserID, s.ScopeID)
	if r.active[key] == s {
		delete(r.active, key)
	}
}

// Get returns the active session for a key, if any.
func (r *Registry) Get(userID, scopeID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.active[sessionKey(userID, scopeID)]
	return s, ok
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
