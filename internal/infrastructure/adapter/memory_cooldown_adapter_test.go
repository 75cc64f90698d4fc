package adapter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/michaelkobetss/test-task-otpusk/internal/infrastructure/adapter"
)

func TestMemoryCooldownAdapter(t *testing.T) {
	ctx := context.Background()
	store := adapter.NewMemoryCooldownAdapter()

	_, found, err := store.Get(ctx, "1115")
	require.NoError(t, err)
	assert.False(t, found)

	cooldown := search.Cooldown{Token: "tok-1", WaitUntil: time.Now().Add(time.Minute)}
	require.NoError(t, store.Set(ctx, "1115", cooldown))

	got, found, err := store.Get(ctx, "1115")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, cooldown, got)

	_, found, err = store.Get(ctx, "2222")
	require.NoError(t, err)
	assert.False(t, found, "cooldowns are scoped per key")

	require.NoError(t, store.Delete(ctx, "1115"))
	_, found, err = store.Get(ctx, "1115")
	require.NoError(t, err)
	assert.False(t, found)

	// deleting an absent key is not an error
	require.NoError(t, store.Delete(ctx, "1115"))
}
