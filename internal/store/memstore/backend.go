// Package memstore implements the store backend in memory. Used for tests
// and for running the service without Redis.
package memstore

import (
	"context"
	"sync"

	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
)

// Backend keeps values in a map. Thread-safe.
type Backend struct {
	mu     sync.Mutex
	values map[string][]byte
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{values: make(map[string][]byte)}
}

// Load retrieves the value stored under key.
func (b *Backend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.values[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save writes the value under key.
func (b *Backend) Save(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.values[key] = stored
	return nil
}
