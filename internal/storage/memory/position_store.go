package memory

import (
	"context"
	"sort"
	"sync"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*domain.Position
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		data: make(map[int64]*domain.Position),
	}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

// Open inserts a new open position and returns its ID.
func (s *PositionStore) Open(_ context.Context, p *domain.Position) (int64, error) {
	if p == nil || p.Wallet == "" || p.Token == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	copy := *p
	copy.ID = s.nextID
	copy.Status = domain.PositionOpen
	s.data[copy.ID] = &copy
	return copy.ID, nil
}

// OldestOpen returns the oldest open position for (wallet, token).
// FIFO order: entry_timestamp ASC, then id ASC (arrival order tie-break).
func (s *PositionStore) OldestOpen(_ context.Context, wallet, token string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest *domain.Position
	for _, p := range s.data {
		if p.Wallet != wallet || p.Token != token || p.Status != domain.PositionOpen {
			continue
		}
		if oldest == nil ||
			p.EntryTimestamp < oldest.EntryTimestamp ||
			(p.EntryTimestamp == oldest.EntryTimestamp && p.ID < oldest.ID) {
			oldest = p
		}
	}

	if oldest == nil {
		return nil, storage.ErrNotFound
	}
	copy := *oldest
	return &copy, nil
}

// Close transitions a position from open to closed, writing exit fields.
func (s *PositionStore) Close(_ context.Context, p *domain.Position) error {
	if p == nil || p.ID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.data[p.ID]
	if !exists || cur.Status != domain.PositionOpen {
		return storage.ErrNotFound
	}

	cur.Status = domain.PositionClosed
	cur.ExitTradeID = p.ExitTradeID
	cur.ExitTimestamp = p.ExitTimestamp
	cur.ExitPrice = p.ExitPrice
	cur.ExitAmountSOL = p.ExitAmountSOL
	cur.ProfitSOL = p.ProfitSOL
	cur.ProfitPercent = p.ProfitPercent
	cur.HoldTimeMins = p.HoldTimeMins
	return nil
}

// GetByWallet retrieves all positions for a wallet, ordered by
// (entry_timestamp ASC, id ASC).
func (s *PositionStore) GetByWallet(_ context.Context, wallet string) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.Wallet == wallet {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EntryTimestamp != result[j].EntryTimestamp {
			return result[i].EntryTimestamp < result[j].EntryTimestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
