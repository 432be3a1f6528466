package cache

import "sync"

// Store is a keyed map of immutable snapshots. Readers share the stored
// value by reference; writers replace the whole value, never mutate it.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]V),
	}
}

func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	return value, ok
}

func (s *Store[K, V]) Insert(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

func (s *Store[K, V]) Remove(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return value, ok
}

func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ForEach calls fn with every entry under the read lock. fn must not call
// back into the store.
func (s *Store[K, V]) ForEach(fn func(key K, value V)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, value := range s.entries {
		fn(key, value)
	}
}
