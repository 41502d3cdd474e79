// Package memory provides a volatile key-value backend for the record store.
package memory

import (
	"context"
	"sync"
)

// Store keeps values in a map for the life of the process.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key and whether it was present.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Save replaces the value stored under key.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}
