// Package file persists client values in a single JSON object on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
)

// Store implements interfaces.KeyValueStorage and interfaces.StorageManager.
// The whole file is rewritten on every mutation; it holds a handful of keys.
type Store struct {
	path   string
	logger *common.Logger
	mu     sync.RWMutex
}

// New creates a store persisting to path. The directory is created on first write.
func New(path string, logger *common.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// load reads the file. A missing or corrupt file is an empty map.
func (s *Store) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Str("path", s.path).Str("error", err.Error()).Msg("failed to read store file, treating as empty")
		}
		return map[string]string{}
	}
	items := map[string]string{}
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn().Str("path", s.path).Msg("corrupt store file, treating as empty")
		return map[string]string{}
	}
	return items
}

func (s *Store) save(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.load()[key]
	if !ok {
		return "", interfaces.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.load()
	items[key] = value
	return s.save(items)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.load()
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.save(items)
}

// KeyValueStorage returns the store itself.
func (s *Store) KeyValueStorage() interfaces.KeyValueStorage { return s }

// Close is a no-op; every write is flushed immediately.
func (s *Store) Close() error { return nil }
