package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkaykaya07/BerkayKayaCase/internal/store"
)

func setupTestRedis(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test:"), mr
}

func TestBackend_LoadMissingKey(t *testing.T) {
	b, _ := setupTestRedis(t)

	_, err := b.Load(context.Background(), store.KeyCart)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestBackend_SaveAndLoad(t *testing.T) {
	b, _ := setupTestRedis(t)
	ctx := context.Background()

	payload := []byte(`[{"product":{"id":1},"quantity":2}]`)
	require.NoError(t, b.Save(ctx, store.KeyCart, payload))

	data, err := b.Load(ctx, store.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestBackend_KeysArePrefixed(t *testing.T) {
	b, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, store.KeyFavorites, []byte(`[]`)))

	val, err := mr.Get("test:" + store.KeyFavorites)
	require.NoError(t, err)
	assert.Equal(t, "[]", val)
}

func TestBackend_SaveHasNoExpiry(t *testing.T) {
	b, mr := setupTestRedis(t)

	require.NoError(t, b.Save(context.Background(), store.KeyCart, []byte(`[]`)))
	assert.Zero(t, mr.TTL("test:"+store.KeyCart))
}

func TestBackend_LoadRedisDown(t *testing.T) {
	b, mr := setupTestRedis(t)
	mr.Close()

	_, err := b.Load(context.Background(), store.KeyCart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrKeyNotFound)
}
