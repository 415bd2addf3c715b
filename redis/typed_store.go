package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypedStore provides typed JSON-serialized get/set operations on Redis.
type TypedStore[V any] struct {
	client    *Client
	keyPrefix string
}

// NewTypedStore creates a TypedStore backed by the given Redis client.
// All keys are prefixed with keyPrefix followed by a colon separator.
func NewTypedStore[V any](client *Client, keyPrefix string) *TypedStore[V] {
	return &TypedStore[V]{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Key returns the full Redis key for key.
func (s *TypedStore[V]) Key(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load deserializes the JSON value at key. ok is false when the key does not exist.
func (s *TypedStore[V]) Load(ctx context.Context, key string) (val V, ok bool, err error) {
	raw, err := s.client.Get(ctx, s.Key(key))
	if err != nil {
		if IsNil(err) {
			return val, false, nil
		}
		return val, false, fmt.Errorf("typed store load %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return val, false, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return val, true, nil
}

// Save serializes to JSON and stores with TTL. TTL of 0 means no expiration.
func (s *TypedStore[V]) Save(ctx context.Context, key string, val V, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.Key(key), string(data), ttl); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key and reports whether it existed.
func (s *TypedStore[V]) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.Key(key))
	if err != nil {
		return false, fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return n > 0, nil
}
