package prefs

import (
	"context"
	"sync"
)

// InMemStore is a mutex-guarded Store for tests and single-node dev runs.
type InMemStore struct {
	mu       sync.RWMutex
	dnd      map[string]bool
	reminded map[string]map[string]struct{}
}

var _ Store = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{
		dnd:      make(map[string]bool),
		reminded: make(map[string]map[string]struct{}),
	}
}

func (s *InMemStore) DoNotDisturb(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dnd[userID], nil
}

func (s *InMemStore) SetDoNotDisturb(_ context.Context, userID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dnd[userID] = enabled
	return nil
}

func (s *InMemStore) WasReminded(_ context.Context, userID, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.reminded[userID][eventID]
	return ok, nil
}

func (s *InMemStore) MarkReminded(_ context.Context, userID string, eventIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.reminded[userID]
	if !ok {
		set = make(map[string]struct{})
		s.reminded[userID] = set
	}
	for _, id := range eventIDs {
		set[id] = struct{}{}
	}
	return nil
}
