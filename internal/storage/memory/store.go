// Package memory provides an in-process profile store, used when no database
// path is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"raspadita/internal/storage"
)

// Store keeps profile values in a map.
type Store struct {
	mu     sync.RWMutex
	values map[string]map[string]string // map[profileID]map[key]value
	closed bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]map[string]string)}
}

func (s *Store) Get(ctx context.Context, profileID, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, fmt.Errorf("%w: memory store closed", storage.ErrStorageUnavailable)
	}
	value, ok := s.values[profileID][key]
	return value, ok, nil
}

func (s *Store) Set(ctx context.Context, profileID, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: memory store closed", storage.ErrStorageUnavailable)
	}
	// Ensure the nested map exists before writing to it
	if s.values[profileID] == nil {
		s.values[profileID] = make(map[string]string)
	}
	s.values[profileID][key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, profileID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: memory store closed", storage.ErrStorageUnavailable)
	}
	delete(s.values[profileID], key)
	return nil
}

// Close makes every later call fail with storage.ErrStorageUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
