package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string]*domain.Trade // keyed by signature
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert adds a trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) (int64, error) {
	if t == nil || t.Wallet == "" || t.Signature == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Signature]; exists {
		return 0, storage.ErrDuplicateKey
	}

	s.nextID++
	copy := *t
	copy.ID = s.nextID
	if copy.CreatedAt == 0 {
		copy.CreatedAt = time.Now().Unix()
	}
	s.data[t.Signature] = &copy
	return copy.ID, nil
}

// ByID retrieves a trade by ID.
func (s *TradeStore) ByID(_ context.Context, id int64) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.ID == id {
			copy := *t
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetByWallet retrieves all trades for a wallet, ordered by (timestamp, id).
func (s *TradeStore) GetByWallet(_ context.Context, wallet string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Wallet == wallet {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Recent retrieves the newest trades for a wallet, up to limit.
func (s *TradeStore) Recent(ctx context.Context, wallet string, limit int) ([]*domain.Trade, error) {
	trades, err := s.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	// Reverse to (timestamp DESC, id DESC)
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

// Count returns the number of trade rows.
func (s *TradeStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
