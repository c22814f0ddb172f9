package keystore

import (
	"context"
	"sync"

	"github.com/brandforge/videogen-api/internal/provider"
)

// MemoryStore is an in-memory implementation of provider.KeyStore.
// Suitable for tests and for running without a Redis backend.
type MemoryStore struct {
	mu   sync.RWMutex
	keys []provider.KeyConfig
}

// NewMemoryStore creates a MemoryStore seeded with the given key configs.
func NewMemoryStore(keys ...provider.KeyConfig) *MemoryStore {
	return &MemoryStore{keys: keys}
}

// List returns all stored key configs in stored order.
func (s *MemoryStore) List(_ context.Context) ([]provider.KeyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]provider.KeyConfig, len(s.keys))
	copy(out, s.keys)
	return out, nil
}

// Put replaces the stored key configs.
func (s *MemoryStore) Put(_ context.Context, keys []provider.KeyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make([]provider.KeyConfig, len(keys))
	copy(s.keys, keys)
	return nil
}

// Compile-time check that MemoryStore implements provider.KeyStore.
var _ provider.KeyStore = (*MemoryStore)(nil)
