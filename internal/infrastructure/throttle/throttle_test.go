package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(time.Minute)

	_, ok, err := cache.LastLogin(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, cache.SetLastLogin(ctx, "a@example.com", at))

	got, ok, err := cache.LastLogin(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, at, got)
}

func TestMemoryDropsStaleEntriesOnWrite(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(time.Minute)

	old := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	require.NoError(t, cache.SetLastLogin(ctx, "stale@example.com", old))

	// a write more than the retention later sweeps the stale entry
	require.NoError(t, cache.SetLastLogin(ctx, "fresh@example.com", old.Add(2*time.Minute)))

	_, ok, err := cache.LastLogin(ctx, "stale@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = cache.LastLogin(ctx, "fresh@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
