package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"salonbook/internal/auth"
	"salonbook/internal/metrics"
)

// Session is one customer's (or staff member's) booking state.
type Session struct {
	ID        string
	Role      auth.Role
	StylistID int64 // set for stylist and admin logins
	Flow      *Flow
	StartedAt time.Time

	state      State
	contact    Contact
	submitting bool
	updatedAt  time.Time
	mu         sync.Mutex
}

// NewSession creates a session in the browsing state.
func NewSession(id string, role auth.Role, flow *Flow) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Role:      role,
		Flow:      flow,
		StartedAt: now,
		state:     StateBrowsing,
		updatedAt: now,
	}
}

// SetState updates the session state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.updatedAt = time.Now()
}

// State returns current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Contact returns the contact details collected so far.
func (s *Session) Contact() Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contact
}

// UpdateContact applies fn to the stored contact details.
func (s *Session) UpdateContact(fn func(*Contact)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.contact)
	s.updatedAt = time.Now()
}

// beginSubmit claims the session for one checkout. It reports false while
// another checkout is running.
func (s *Session) beginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Session) endSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
}

// IsExpired checks if session has expired.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.updatedAt) > timeout
}

// FlowFactory builds the per-session flow.
type FlowFactory func() *Flow

// SessionStore manages booking sessions.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
	newFlow  FlowFactory
}

// NewSessionStore creates a new session store.
func NewSessionStore(timeout time.Duration, newFlow FlowFactory) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		newFlow:  newFlow,
	}
}

// Create starts a session with a random id.
func (ss *SessionStore) Create(role auth.Role, stylistID int64) *Session {
	session := NewSession(uuid.NewString(), role, ss.newFlow())
	session.StylistID = stylistID

	ss.mu.Lock()
	ss.sessions[session.ID] = session
	n := len(ss.sessions)
	ss.mu.Unlock()

	metrics.SetSessionsActive(n)
	return session
}

// Get returns a live session.
func (ss *SessionStore) Get(id string) (*Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok || session.IsExpired(ss.timeout) {
		return nil, false
	}
	session.Touch()
	return session, true
}

// GetOrCreate returns existing or creates new customer session under id.
func (ss *SessionStore) GetOrCreate(id string) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, ok := ss.sessions[id]
	if ok && !session.IsExpired(ss.timeout) {
		session.Touch()
		return session
	}

	session = NewSession(id, auth.RoleCustomer, ss.newFlow())
	ss.sessions[id] = session
	metrics.SetSessionsActive(len(ss.sessions))
	return session
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
	metrics.SetSessionsActive(len(ss.sessions))
}

// Reset replaces a session with a fresh one keeping its id and role.
func (ss *SessionStore) Reset(id string) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	role := auth.RoleCustomer
	var stylistID int64
	if old, ok := ss.sessions[id]; ok {
		role = old.Role
		stylistID = old.StylistID
	}
	session := NewSession(id, role, ss.newFlow())
	session.StylistID = stylistID
	ss.sessions[id] = session
	return session
}

// Len returns the number of stored sessions.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Cleanup removes expired sessions.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	metrics.SetSessionsActive(len(ss.sessions))
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (ss *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ss.Cleanup()
			}
		}
	}()
}
