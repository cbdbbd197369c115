package bot

import "sync"

// contactStep tracks which contact field the chat is being asked for.
type contactStep string

const (
	stepNone      contactStep = ""
	stepFirstName contactStep = "first_name"
	stepLastName  contactStep = "last_name"
	stepEmail     contactStep = "email"
	stepPhone     contactStep = "phone"
)

type stateStore struct {
	mu sync.Mutex
	m  map[int64]contactStep
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]contactStep)}
}

func (s *stateStore) get(chatID int64) contactStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID]
}

func (s *stateStore) set(chatID int64, step contactStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = step
}

func (s *stateStore) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
}
