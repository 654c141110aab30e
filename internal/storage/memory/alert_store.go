package memory

import (
	"context"
	"sort"
	"sync"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*domain.Alert
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		data: make(map[int64]*domain.Alert),
	}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Insert enqueues an alert and returns its ID.
func (s *AlertStore) Insert(_ context.Context, a *domain.Alert) (int64, error) {
	if a == nil || a.ConfigID == 0 || a.Wallet == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	copy := *a
	copy.ID = s.nextID
	if copy.Status == "" {
		copy.Status = domain.AlertQueued
	}
	s.data[copy.ID] = &copy
	return copy.ID, nil
}

// ClaimQueued moves up to limit queued alerts to sending and returns them,
// oldest first. A claimed alert is never handed out again.
func (s *AlertStore) ClaimQueued(_ context.Context, limit int) ([]*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queued []*domain.Alert
	for _, a := range s.data {
		if a.Status == domain.AlertQueued {
			queued = append(queued, a)
		}
	}

	sort.Slice(queued, func(i, j int) bool { return queued[i].ID < queued[j].ID })
	if limit > 0 && len(queued) > limit {
		queued = queued[:limit]
	}

	result := make([]*domain.Alert, 0, len(queued))
	for _, a := range queued {
		a.Status = domain.AlertSending
		copy := *a
		result = append(result, &copy)
	}
	return result, nil
}

// SetStatus records the delivery outcome.
func (s *AlertStore) SetStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	a.Status = status
	return nil
}

// CountByStatus returns the number of alerts in the given status.
func (s *AlertStore) CountByStatus(_ context.Context, status string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.data {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}
