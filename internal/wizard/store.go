package wizard

import (
	"sync"
	"time"

	"tajeer-server/prometheus"
)

// Store keeps in-flight sessions in memory, keyed by session id and scoped
// to the owning user. Terminal sessions are dropped; stale in-progress
// sessions expire after the TTL so their staged uploads can be swept.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewStore constructs a session store
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Open creates and registers a new session
func (s *Store) Open(kind string, ownerID uint, steps []Step) *Session {
	session := NewSession(kind, ownerID, steps)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	s.sessions[session.ID] = session
	return session
}

// Get returns the session if it exists and belongs to the owner
func (s *Store) Get(id string, ownerID uint) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()

	session, ok := s.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return nil, false
	}
	return session, true
}

// Remove drops a session from the store
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// expireLocked drops stale sessions and releases their slot in the
// per-kind session gauge, which otherwise only cancel/submit release
func (s *Store) expireLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.idleSince(cutoff) {
			delete(s.sessions, id)
			prometheus.WizardSessionsGauge.WithLabelValues(session.Kind).Dec()
		}
	}
}
