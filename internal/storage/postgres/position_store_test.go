package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// seedTrade inserts a wallet-owned trade and returns its id for FK use.
func seedTrade(t *testing.T, pool *Pool, wallet, sig string, ts int64) int64 {
	t.Helper()
	id, err := NewTradeStore(pool).Insert(context.Background(), testTrade(wallet, sig, ts))
	require.NoError(t, err)
	return id
}

func openPosition(wallet string, entryTradeID, entryTs int64) *domain.Position {
	return &domain.Position{
		Wallet:            wallet,
		Token:             "token-1",
		TokenSymbol:       "TEST",
		EntryTradeID:      entryTradeID,
		EntryTimestamp:    entryTs,
		EntryPrice:        0.001,
		EntryAmountSOL:    1.0,
		EntryAmountTokens: 1000,
		Status:            domain.PositionOpen,
	}
}

func TestPositionStore_OpenAndOldestOpen(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	// Newer entry first to prove ordering is by entry time
	t2 := seedTrade(t, pool, "wallet-1", "sig-2", 2000)
	_, err := store.Open(ctx, openPosition("wallet-1", t2, 2000))
	require.NoError(t, err)

	t1 := seedTrade(t, pool, "wallet-1", "sig-1", 1000)
	id1, err := store.Open(ctx, openPosition("wallet-1", t1, 1000))
	require.NoError(t, err)

	got, err := store.OldestOpen(ctx, "wallet-1", "token-1")
	require.NoError(t, err)
	assert.Equal(t, id1, got.ID)
	assert.Equal(t, int64(1000), got.EntryTimestamp)
}

func TestPositionStore_OldestOpenTimestampTie(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	t1 := seedTrade(t, pool, "wallet-1", "sig-1", 1000)
	t2 := seedTrade(t, pool, "wallet-1", "sig-2", 1000)

	first, err := store.Open(ctx, openPosition("wallet-1", t1, 1000))
	require.NoError(t, err)
	_, err = store.Open(ctx, openPosition("wallet-1", t2, 1000))
	require.NoError(t, err)

	got, err := store.OldestOpen(ctx, "wallet-1", "token-1")
	require.NoError(t, err)
	assert.Equal(t, first, got.ID, "tie broken by insertion order")
}

func TestPositionStore_CloseRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	entryID := seedTrade(t, pool, "wallet-1", "sig-1", 1000)
	exitID := seedTrade(t, pool, "wallet-1", "sig-2", 1600)

	posID, err := store.Open(ctx, openPosition("wallet-1", entryID, 1000))
	require.NoError(t, err)

	pos, err := store.OldestOpen(ctx, "wallet-1", "token-1")
	require.NoError(t, err)
	pos.ExitTradeID = exitID
	pos.ExitTimestamp = 1600
	pos.ExitPrice = 0.0015
	pos.ExitAmountSOL = 1.5
	pos.ProfitSOL = 0.5
	pos.ProfitPercent = 50.0
	pos.HoldTimeMins = 10
	require.NoError(t, store.Close(ctx, pos))

	all, err := store.GetByWallet(ctx, "wallet-1")
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, posID, got.ID)
	assert.True(t, got.Closed())
	assert.Equal(t, 0.5, got.ProfitSOL)
	assert.Equal(t, 50.0, got.ProfitPercent)
	assert.Equal(t, int64(10), got.HoldTimeMins)
	// Entry fields untouched by the close
	assert.Equal(t, int64(1000), got.EntryTimestamp)
	assert.Equal(t, 1.0, got.EntryAmountSOL)
}

func TestPositionStore_DoubleCloseRejected(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	entryID := seedTrade(t, pool, "wallet-1", "sig-1", 1000)
	_, err := store.Open(ctx, openPosition("wallet-1", entryID, 1000))
	require.NoError(t, err)

	pos, err := store.OldestOpen(ctx, "wallet-1", "token-1")
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx, pos))

	err = store.Close(ctx, pos)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
}

func TestPositionStore_OldestOpenNoMatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	_, err := store.OldestOpen(ctx, "wallet-1", "token-1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// An open lot on another token does not match
	tradeID := seedTrade(t, pool, "wallet-1", "sig-1", 1000)
	p := openPosition("wallet-1", tradeID, 1000)
	p.Token = "token-other"
	_, err = store.Open(ctx, p)
	require.NoError(t, err)

	_, err = store.OldestOpen(ctx, "wallet-1", "token-1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPositionStore_GetByWalletOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	var ids []int64
	for i := 3; i >= 1; i-- {
		tradeID := seedTrade(t, pool, "wallet-1", fmt.Sprintf("sig-%d", i), int64(i*1000))
		id, err := store.Open(ctx, openPosition("wallet-1", tradeID, int64(i*1000)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	got, err := store.GetByWallet(ctx, "wallet-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1000), got[0].EntryTimestamp)
	assert.Equal(t, int64(2000), got[1].EntryTimestamp)
	assert.Equal(t, int64(3000), got[2].EntryTimestamp)
}
