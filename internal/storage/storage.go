// Package storage provides the keyed credential store the session layer
// persists into. Implementations must survive process restarts except for
// the in-memory store, which exists for tests.
package storage

import "errors"

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the minimal keyed persistence capability consumed by the session
// manager: get, set, remove. Values are cleared only by explicit Remove.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
// It is not safe for concurrent use; callers serialize access.
type MemoryStore struct {
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	delete(s.values, key)
	return nil
}
