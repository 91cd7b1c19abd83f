// Package memory is an in-process KeyValueStorage used by tests and the "memory" backend.
package memory

import (
	"context"
	"sync"

	"github.com/bobmcallan/tradedesk/internal/interfaces"
)

// Store implements interfaces.KeyValueStorage and interfaces.StorageManager over a map.
type Store struct {
	mu    sync.RWMutex
	items map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{items: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return "", interfaces.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// KeyValueStorage returns the store itself.
func (s *Store) KeyValueStorage() interfaces.KeyValueStorage { return s }

// Close is a no-op.
func (s *Store) Close() error { return nil }
