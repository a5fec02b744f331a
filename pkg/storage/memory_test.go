package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	t.Run("Get_Missing", func(t *testing.T) {
		_, err := backend.Get(ctx, VehiclesKey)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, VehiclesKey, "[]"))

		value, err := backend.Get(ctx, VehiclesKey)
		require.NoError(t, err)
		assert.Equal(t, "[]", value)
		assert.Equal(t, 1, backend.Len())
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		require.NoError(t, backend.Set(ctx, VehiclesKey, `[{"id":"v1"}]`))

		value, err := backend.Get(ctx, VehiclesKey)
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"v1"}]`, value)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, backend.Remove(ctx, VehiclesKey))

		_, err := backend.Get(ctx, VehiclesKey)
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.Zero(t, backend.Len())
	})
}
