// Package keyset provides a thread-safe string key set with an explicit
// lifecycle: created at service startup and injected into every component
// that needs it, instead of living as a package-level singleton.
package keyset

import "sync"

// Set is a concurrent set of string keys.
type Set struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// Add inserts a key. Adding an existing key is a no-op.
func (s *Set) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// Has reports whether the key is in the set.
func (s *Set) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Remove deletes a key from the set.
func (s *Set) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
