// Package memory provides an in-memory ports.OutputStore. It backs tests
// and single-process deployments that want write-through semantics without
// a Redis instance.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arcfactory/arc/pkg/domain"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// Store implements ports.OutputStore in memory. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	data   map[string]entry
	closed bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]entry)}
}

// Save stores a copy of the value under the key. A zero TTL stores without
// expiration.
func (s *Store) Save(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = e
	return nil
}

// Load returns a copy of the stored value or domain.ErrEntryNotFound.
// Expired entries are removed on access.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.data, key)
		return nil, domain.ErrEntryNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Delete removes the entry. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys of unexpired entries.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.data, k)
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Close marks the store closed. It never fails; the flag exists so callers
// can assert teardown ordering.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
