package storage

import (
	"context"
	"maps"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// MemoryStore is a process-local KeyValueStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements ports.KeyValueStore.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", domain.NewNotFoundError("key", key)
	}

	return v, nil
}

// Set implements ports.KeyValueStore.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value

	return nil
}

// SetMany implements ports.KeyValueStore.
func (s *MemoryStore) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.data, entries)

	return nil
}

// Close implements ports.KeyValueStore.
func (s *MemoryStore) Close() error { return nil }

// Name implements ports.HealthChecker.
func (s *MemoryStore) Name() string { return healthCheckName }

// Check implements ports.HealthChecker.
func (s *MemoryStore) Check(ctx context.Context) error { return ctx.Err() }
