package cart

import "sync"

// Store hands out one Manager per storefront session, creating them on
// demand. Managers live for the lifetime of the process.
type Store struct {
	mu   sync.Mutex
	byID map[string]*Manager
}

func NewStore() *Store {
	return &Store{byID: map[string]*Manager{}}
}

func (s *Store) Get(id string) *Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		m = NewManager()
		s.byID[id] = m
	}
	return m
}
