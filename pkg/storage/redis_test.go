package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisBackend(t *testing.T, prefix string) *RedisBackend {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisBackend(client, prefix)
}

func TestRedisBackend_SetGetRemove(t *testing.T) {
	backend := newTestRedisBackend(t, "")
	ctx := context.Background()

	t.Run("Set", func(t *testing.T) {
		err := backend.Set(ctx, VehiclesKey, `[{"id":"v1"}]`)
		assert.NoError(t, err)
	})

	t.Run("Get", func(t *testing.T) {
		value, err := backend.Get(ctx, VehiclesKey)
		assert.NoError(t, err)
		assert.Equal(t, `[{"id":"v1"}]`, value)
	})

	t.Run("Get_Missing", func(t *testing.T) {
		_, err := backend.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		err := backend.Remove(ctx, VehiclesKey)
		assert.NoError(t, err)

		_, err = backend.Get(ctx, VehiclesKey)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Remove_MissingIsNoError", func(t *testing.T) {
		assert.NoError(t, backend.Remove(ctx, "absent"))
	})
}

func TestRedisBackend_KeyPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	prefixed := NewRedisBackend(client, "test:")
	bare := NewRedisBackend(client, "")
	ctx := context.Background()

	require.NoError(t, prefixed.Set(ctx, RecordsKey, "[]"))

	// the prefixed value is invisible without the prefix
	_, err = bare.Get(ctx, RecordsKey)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	value, err := bare.Get(ctx, "test:"+RecordsKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}
