package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-tracker/internal/storage"
)

func TestWalletStore_EnsureAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	err := store.Ensure(ctx, "wallet-1", 1000)
	require.NoError(t, err)

	w, err := store.Get(ctx, "wallet-1")
	require.NoError(t, err)

	assert.Equal(t, "wallet-1", w.Address)
	assert.Equal(t, int64(1000), w.FirstSeen)
	assert.Equal(t, int64(1000), w.LastActive)
	assert.Zero(t, w.TotalTrades)
	assert.False(t, w.Tracked)
}

func TestWalletStore_EnsureAdvancesLastActiveOnly(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Ensure(ctx, "wallet-1", 1000))
	require.NoError(t, store.Ensure(ctx, "wallet-1", 2000))

	w, err := store.Get(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), w.FirstSeen)
	assert.Equal(t, int64(2000), w.LastActive)

	// Out-of-order event never rewinds last_active
	require.NoError(t, store.Ensure(ctx, "wallet-1", 1500))
	w, err = store.Get(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), w.LastActive)
}

func TestWalletStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)

	_, err := store.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestWalletStore_UpdateAggregatesRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Ensure(ctx, "wallet-1", 1000))

	w, err := store.Get(ctx, "wallet-1")
	require.NoError(t, err)

	w.TotalTrades = 7
	w.Wins = 4
	w.Losses = 3
	w.TotalProfitSOL = 2.5
	w.AvgHoldTimeMins = 14.5
	w.Volume24h = 3.2
	w.Volume7d = 11.8
	w.ROI24h = 25.0
	w.ROI7d = 12.5
	w.PerformanceScore = 48.75
	w.LastActive = 5000
	require.NoError(t, store.UpdateAggregates(ctx, w))

	got, err := store.Get(ctx, "wallet-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.TotalTrades)
	assert.Equal(t, 4, got.Wins)
	assert.Equal(t, 3, got.Losses)
	assert.Equal(t, 2.5, got.TotalProfitSOL)
	assert.Equal(t, 14.5, got.AvgHoldTimeMins)
	assert.Equal(t, 11.8, got.Volume7d)
	assert.Equal(t, 48.75, got.PerformanceScore)
	assert.Equal(t, int64(5000), got.LastActive)
}

func TestWalletStore_SetTracked(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Ensure(ctx, "wallet-1", 1000))
	require.NoError(t, store.SetTracked(ctx, "wallet-1", true))

	w, err := store.Get(ctx, "wallet-1")
	require.NoError(t, err)
	assert.True(t, w.Tracked)

	err = store.SetTracked(ctx, "missing", true)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestWalletStore_LeaderboardFilterAndOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	seed := []struct {
		addr   string
		trades int
		score  float64
	}{
		{"few-trades", 4, 99.0},
		{"first", 10, 80.0},
		{"second", 6, 55.0},
	}
	for _, sd := range seed {
		require.NoError(t, store.Ensure(ctx, sd.addr, 1000))
		w, err := store.Get(ctx, sd.addr)
		require.NoError(t, err)
		w.TotalTrades = sd.trades
		w.PerformanceScore = sd.score
		require.NoError(t, store.UpdateAggregates(ctx, w))
	}

	got, err := store.Leaderboard(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Address)
	assert.Equal(t, "second", got[1].Address)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
