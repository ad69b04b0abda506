// Package redisstore implements the store backend on Redis. Values are
// written without TTL: the cart and favorites survive restarts.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
)

// Backend persists store values as plain Redis strings.
type Backend struct {
	client *redis.Client
	prefix string
}

// New creates a Redis-backed store backend. The prefix namespaces the fixed
// storage keys so several instances can share one Redis database.
func New(client *redis.Client, prefix string) *Backend {
	return &Backend{
		client: client,
		prefix: prefix,
	}
}

// Load retrieves the value stored under key.
func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Save writes the value under key with no expiry.
func (b *Backend) Save(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, b.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
