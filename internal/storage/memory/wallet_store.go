// Package memory provides in-memory implementations of the storage
// interfaces for tests and the --use-memory development mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Wallet // keyed by address
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.Wallet),
	}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Ensure creates the wallet row if absent and advances last_active.
func (s *WalletStore) Ensure(_ context.Context, address string, ts int64) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.data[address]
	if !exists {
		s.data[address] = &domain.Wallet{
			Address:    address,
			FirstSeen:  ts,
			LastActive: ts,
		}
		return nil
	}
	if ts > w.LastActive {
		w.LastActive = ts
	}
	return nil
}

// Get retrieves a wallet by address.
func (s *WalletStore) Get(_ context.Context, address string) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *w
	return &copy, nil
}

// UpdateAggregates overwrites the derived fields of an existing wallet.
func (s *WalletStore) UpdateAggregates(_ context.Context, w *domain.Wallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.data[w.Address]
	if !exists {
		return storage.ErrNotFound
	}

	cur.TotalTrades = w.TotalTrades
	cur.Wins = w.Wins
	cur.Losses = w.Losses
	cur.TotalProfitSOL = w.TotalProfitSOL
	cur.AvgHoldTimeMins = w.AvgHoldTimeMins
	cur.Volume24h = w.Volume24h
	cur.Volume7d = w.Volume7d
	cur.ROI24h = w.ROI24h
	cur.ROI7d = w.ROI7d
	cur.PerformanceScore = w.PerformanceScore
	return nil
}

// SetTracked flips the tracked flag.
func (s *WalletStore) SetTracked(_ context.Context, address string, tracked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.data[address]
	if !exists {
		return storage.ErrNotFound
	}
	w.Tracked = tracked
	return nil
}

// Leaderboard returns top wallets by score with total_trades >= minTrades.
func (s *WalletStore) Leaderboard(_ context.Context, minTrades, limit int) ([]*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Wallet
	for _, w := range s.data {
		if w.TotalTrades >= minTrades {
			copy := *w
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PerformanceScore != result[j].PerformanceScore {
			return result[i].PerformanceScore > result[j].PerformanceScore
		}
		return result[i].Address < result[j].Address
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of wallet rows.
func (s *WalletStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
