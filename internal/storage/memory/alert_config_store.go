package memory

import (
	"context"
	"sort"
	"sync"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// AlertConfigStore is an in-memory implementation of storage.AlertConfigStore.
type AlertConfigStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*domain.AlertConfig
}

// NewAlertConfigStore creates a new in-memory alert config store.
func NewAlertConfigStore() *AlertConfigStore {
	return &AlertConfigStore{
		data: make(map[int64]*domain.AlertConfig),
	}
}

// Compile-time interface check.
var _ storage.AlertConfigStore = (*AlertConfigStore)(nil)

// Insert adds a subscription and returns its ID.
func (s *AlertConfigStore) Insert(_ context.Context, c *domain.AlertConfig) (int64, error) {
	if c == nil || c.Wallet == "" || c.SubscriberID == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	copy := *c
	copy.ID = s.nextID
	s.data[copy.ID] = &copy
	return copy.ID, nil
}

// ByID retrieves a config by ID.
func (s *AlertConfigStore) ByID(_ context.Context, id int64) (*domain.AlertConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

// ActiveForWallet retrieves all active configs watching a wallet.
func (s *AlertConfigStore) ActiveForWallet(_ context.Context, wallet string) ([]*domain.AlertConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertConfig
	for _, c := range s.data {
		if c.Wallet == wallet && c.Active {
			copy := *c
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// BySubscriber retrieves all active configs owned by a subscriber.
func (s *AlertConfigStore) BySubscriber(_ context.Context, subscriberID string) ([]*domain.AlertConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertConfig
	for _, c := range s.data {
		if c.SubscriberID == subscriberID && c.Active {
			copy := *c
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Deactivate clears the active flag.
func (s *AlertConfigStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	c.Active = false
	return nil
}
