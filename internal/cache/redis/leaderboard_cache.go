package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

const leaderboardTTL = 30 * time.Second

// LeaderboardCache holds recent leaderboard query results as JSON blobs
// keyed by (minTrades, limit). The leaderboard changes on every processed
// trade, so entries stay short-lived rather than being invalidated.
//
// Key schema:
//
//	leaderboard:{minTrades}:{limit} - JSON array of wallets
type LeaderboardCache struct {
	rdb *redis.Client
}

// NewLeaderboardCache creates a LeaderboardCache backed by the given Client.
func NewLeaderboardCache(c *Client) *LeaderboardCache {
	return &LeaderboardCache{rdb: c.Underlying()}
}

func leaderboardKey(minTrades, limit int) string {
	return fmt.Sprintf("leaderboard:%d:%d", minTrades, limit)
}

// Set stores a leaderboard result with a 30-second TTL.
func (lc *LeaderboardCache) Set(ctx context.Context, minTrades, limit int, wallets []*domain.Wallet) error {
	data, err := json.Marshal(wallets)
	if err != nil {
		return fmt.Errorf("redis: marshal leaderboard: %w", err)
	}

	if err := lc.rdb.Set(ctx, leaderboardKey(minTrades, limit), data, leaderboardTTL).Err(); err != nil {
		return fmt.Errorf("redis: set leaderboard: %w", err)
	}
	return nil
}

// Get retrieves a cached leaderboard result.
// It returns storage.ErrNotFound when the key does not exist.
func (lc *LeaderboardCache) Get(ctx context.Context, minTrades, limit int) ([]*domain.Wallet, error) {
	data, err := lc.rdb.Get(ctx, leaderboardKey(minTrades, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get leaderboard: %w", err)
	}

	var wallets []*domain.Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal leaderboard: %w", err)
	}
	return wallets, nil
}
