// Package statetest provides an in-memory core.StateContext double for
// exercising the processor core without a real validator, the way the
// teacher's test files stand up a minimal in-memory StateRW rather than
// pulling in a database for unit tests.
package statetest

import "sync"

// Store is a map-backed core.StateContext. Zero value is ready to use.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// GetState returns the subset of addresses present in the store.
func (s *Store) GetState(addresses []string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte, len(addresses))
	for _, addr := range addresses {
		if v, ok := s.data[addr]; ok {
			out[addr] = v
		}
	}
	return out, nil
}

// SetState writes every entry unconditionally.
func (s *Store) SetState(entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, v := range entries {
		s.data[addr] = v
	}
	return nil
}

// Raw returns the byte value stored at addr, for assertions in tests that
// need to inspect the container directly rather than through an Accessor.
func (s *Store) Raw(addr string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[addr]
	return v, ok
}

// Len reports how many addresses currently hold state, for tests asserting
// on the shape of writes rather than their content.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
