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

func seedWallet(t *testing.T, pool *Pool, address string) {
	t.Helper()
	require.NoError(t, NewWalletStore(pool).Ensure(context.Background(), address, 1000))
}

func testTrade(wallet, sig string, ts int64) *domain.Trade {
	return &domain.Trade{
		Wallet:       wallet,
		Token:        "token-1",
		TokenName:    "Test",
		TokenSymbol:  "TEST",
		Action:       domain.ActionBuy,
		AmountSOL:    1.5,
		AmountTokens: 1000,
		Timestamp:    ts,
		Price:        0.0015,
		Signature:    sig,
	}
}

func TestTradeStore_InsertAndByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	id, err := store.Insert(ctx, testTrade("wallet-1", "sig-1", 1000))
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := store.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", got.Wallet)
	assert.Equal(t, "sig-1", got.Signature)
	assert.Equal(t, 1.5, got.AmountSOL)
	assert.NotZero(t, got.CreatedAt)
}

func TestTradeStore_DuplicateSignature(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	_, err := store.Insert(ctx, testTrade("wallet-1", "sig-1", 1000))
	require.NoError(t, err)

	_, err = store.Insert(ctx, testTrade("wallet-1", "sig-1", 2000))
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "got %v", err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTradeStore_GetByWalletOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	// Insert out of order, including a timestamp tie
	_, err := store.Insert(ctx, testTrade("wallet-1", "sig-c", 3000))
	require.NoError(t, err)
	idA, err := store.Insert(ctx, testTrade("wallet-1", "sig-a", 1000))
	require.NoError(t, err)
	idB, err := store.Insert(ctx, testTrade("wallet-1", "sig-b", 1000))
	require.NoError(t, err)

	got, err := store.GetByWallet(ctx, "wallet-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, idA, got[0].ID, "timestamp tie broken by id")
	assert.Equal(t, idB, got[1].ID)
	assert.Equal(t, int64(3000), got[2].Timestamp)
}

func TestTradeStore_Recent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()
	seedWallet(t, pool, "wallet-1")

	for i := 1; i <= 4; i++ {
		_, err := store.Insert(ctx, testTrade("wallet-1", fmt.Sprintf("sig-%d", i), int64(i*1000)))
		require.NoError(t, err)
	}

	got, err := store.Recent(ctx, "wallet-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(4000), got[0].Timestamp)
	assert.Equal(t, int64(3000), got[1].Timestamp)
}

func TestTradeStore_ByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)

	_, err := store.ByID(context.Background(), 12345)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
