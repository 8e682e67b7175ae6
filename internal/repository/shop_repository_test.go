package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewShopRepository(pool, zerolog.Nop())
	ctx := context.Background()

	seedShop(t, pool, "V1", "v1@example.com", "ExponentPushToken[a]", "ExponentPushToken[b]")
	seedShop(t, pool, "V2", "v2@example.com")
	seedShop(t, pool, "V3", "v3@example.com")

	t.Run("GetByIDs", func(t *testing.T) {
		shops, err := repo.GetByIDs(ctx, []string{"V2", "V1", "UNKNOWN"})
		require.NoError(t, err)
		require.Len(t, shops, 2)
		assert.Equal(t, "V1", shops[0].ID)
		assert.Equal(t, "v1@example.com", shops[0].Email)
		assert.Equal(t, "V2", shops[1].ID)
	})

	t.Run("GetByIDs empty", func(t *testing.T) {
		shops, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, shops)
	})

	t.Run("DeviceTokens", func(t *testing.T) {
		tokens, err := repo.DeviceTokens(ctx, "V1")
		require.NoError(t, err)
		assert.Equal(t, []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}, tokens)

		none, err := repo.DeviceTokens(ctx, "V2")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
