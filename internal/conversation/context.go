// Package conversation keeps short-lived per-user dialogue state so that
// follow-up messages like 「追蹤這個」 can be resolved against the product the
// user last asked about. State lives for the process lifetime only and is
// never persisted.
package conversation

import (
	"sync"
	"time"
)

// maxHistory bounds the per-user message history; the oldest entry is dropped
// first.
const maxHistory = 10

// Entry is one exchanged message in a user's recent history.
type Entry struct {
	Role string // "user" or "bot"
	Text string
	At   time.Time
}

// Snapshot is a read-only view of what the user was last talking about.
// It is advisory input to intent classification.
type Snapshot struct {
	LastProduct string
	LastAction  string
	LastPrice   int
}

type userContext struct {
	snapshot Snapshot
	history  []Entry
}

// Store holds conversation contexts keyed by user id. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	contexts map[string]*userContext
}

func NewStore() *Store {
	return &Store{contexts: make(map[string]*userContext)}
}

// Snapshot returns the user's current context; ok is false when the user has
// no recorded context yet.
func (s *Store) Snapshot(userID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uc, ok := s.contexts[userID]
	if !ok {
		return Snapshot{}, false
	}
	return uc.snapshot, true
}

// Update records the latest action and, when non-empty/non-zero, the product
// and price the user was discussing.
func (s *Store) Update(userID, action, product string, price int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uc := s.get(userID)
	uc.snapshot.LastAction = action
	if product != "" {
		uc.snapshot.LastProduct = product
	}
	if price > 0 {
		uc.snapshot.LastPrice = price
	}
}

// Append adds a history entry, evicting the oldest once maxHistory is reached.
func (s *Store) Append(userID string, e Entry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uc := s.get(userID)
	uc.history = append(uc.history, e)
	if len(uc.history) > maxHistory {
		uc.history = uc.history[len(uc.history)-maxHistory:]
	}
}

// History returns a copy of the user's recent entries, oldest first.
func (s *Store) History(userID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uc, ok := s.contexts[userID]
	if !ok {
		return nil
	}
	out := make([]Entry, len(uc.history))
	copy(out, uc.history)
	return out
}

// get returns the user's context, creating it if needed. Caller holds s.mu.
func (s *Store) get(userID string) *userContext {
	uc, ok := s.contexts[userID]
	if !ok {
		uc = &userContext{}
		s.contexts[userID] = uc
	}
	return uc
}
