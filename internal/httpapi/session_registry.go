package httpapi

import (
	"sync"
	"sync/atomic"

	"github.com/atom-sv/leadagent/internal/conversation"
)

// SessionRegistry tracks live conversation sessions and supports graceful
// draining. When draining is enabled, new sessions are rejected while
// in-flight sessions finish naturally.
//
// The mu mutex makes the draining check and wg.Add atomic in Put(), so no
// session can slip in between StartDraining and Wait.
type SessionRegistry struct {
	mu       sync.Mutex
	draining bool
	sessions map[string]*conversation.Session
	wg       sync.WaitGroup
	count    atomic.Int64
}

// NewSessionRegistry creates a new SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*conversation.Session)}
}

// Put registers a new session under its ID. Returns false if the registry is
// draining, meaning no new sessions should be accepted.
func (sr *SessionRegistry) Put(s *conversation.Session) bool {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.draining {
		return false
	}
	sr.sessions[s.ID()] = s
	sr.wg.Add(1)
	sr.count.Add(1)
	return true
}

// Get returns the session with the given ID, or nil.
func (sr *SessionRegistry) Get(id string) *conversation.Session {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.sessions[id]
}

// Remove drops a session from the registry. Must be called exactly once per
// successful Put.
func (sr *SessionRegistry) Remove(id string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if _, ok := sr.sessions[id]; !ok {
		return
	}
	delete(sr.sessions, id)
	sr.count.Add(-1)
	sr.wg.Done()
}

// StartDraining sets the draining flag so that future Put calls return false.
func (sr *SessionRegistry) StartDraining() {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.draining = true
}

// IsDraining reports whether the registry is in draining mode.
func (sr *SessionRegistry) IsDraining() bool {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.draining
}

// ActiveCount returns the number of currently active sessions.
func (sr *SessionRegistry) ActiveCount() int64 {
	return sr.count.Load()
}

// Active returns the live sessions, for shutdown cleanup.
func (sr *SessionRegistry) Active() []*conversation.Session {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	out := make([]*conversation.Session, 0, len(sr.sessions))
	for _, s := range sr.sessions {
		out = append(out, s)
	}
	return out
}

// Wait blocks until all active sessions have been removed.
func (sr *SessionRegistry) Wait() {
	sr.wg.Wait()
}
