// Package keystore provides implementations of the provider key config
// store. The Redis implementation backs the platform's key-value config
// namespace; the memory implementation serves tests and keyless dev runs.
package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/brandforge/videogen-api/internal/provider"
)

// DefaultKey is the KV key holding the provider key config records.
const DefaultKey = "config:provider-keys"

// RedisStore stores provider key configs as a JSON blob in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore over the given client.
// The key parameter overrides DefaultKey when non-empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// List returns all stored key configs. A missing key is a normal
// "not configured" outcome and yields an empty list.
func (s *RedisStore) List(ctx context.Context) ([]provider.KeyConfig, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("keystore: get %s: %w", s.key, err)
	}

	var keys []provider.KeyConfig
	if err := json.Unmarshal(val, &keys); err != nil {
		return nil, fmt.Errorf("keystore: unmarshal %s: %w", s.key, err)
	}
	return keys, nil
}

// Put replaces the stored key configs.
func (s *RedisStore) Put(ctx context.Context, keys []provider.KeyConfig) error {
	b, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("keystore: marshal keys: %w", err)
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("keystore: set %s: %w", s.key, err)
	}
	return nil
}

// Compile-time check that RedisStore implements provider.KeyStore.
var _ provider.KeyStore = (*RedisStore)(nil)
