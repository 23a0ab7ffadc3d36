// Package dialogue keeps the per-user conversation state of the bot.
package dialogue

import (
	"sync"
)

// State is the dialogue state of one user.
type State int

const (
	// StateStart is the default state
	StateStart State = iota
	// StateAwaitingAuthCode waits for the pasted OAuth redirect URL
	StateAwaitingAuthCode
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAwaitingAuthCode:
		return "awaiting_auth_code"
	default:
		return "unknown"
	}
}

// entry guards the state of a single user
type entry struct {
	mu    sync.Mutex
	state State
}

// Store maps user ids to dialogue states. Each user has its own lock, so
// transitions of one user never wait on another user.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewStore creates an empty store; every user starts in StateStart.
func NewStore() *Store {
	return &Store{
		entries: make(map[int64]*entry),
	}
}

func (s *Store) entry(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{state: StateStart}
		s.entries[userID] = e
	}
	return e
}

// Get returns the current state of userID.
func (s *Store) Get(userID int64) State {
	e := s.entry(userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Set unconditionally stores state for userID.
func (s *Store) Set(userID int64, state State) {
	e := s.entry(userID)

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

// CompareAndSwap moves userID from one state to another if it is currently in from.
func (s *Store) CompareAndSwap(userID int64, from, to State) bool {
	e := s.entry(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != from {
		return false
	}
	e.state = to
	return true
}
