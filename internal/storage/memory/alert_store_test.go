package memory

import (
	"context"
	"errors"
	"testing"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

func queuedAlert(configID int64) *domain.Alert {
	return &domain.Alert{
		ConfigID: configID,
		Wallet:   "w1",
		TradeID:  1,
		QueuedAt: 1000,
		Status:   domain.AlertQueued,
	}
}

func TestAlertStore_ClaimQueuedOldestFirst(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	id1, _ := store.Insert(ctx, queuedAlert(1))
	id2, _ := store.Insert(ctx, queuedAlert(2))
	id3, _ := store.Insert(ctx, queuedAlert(3))

	got, err := store.ClaimQueued(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != id1 || got[1].ID != id2 {
		t.Errorf("expected oldest two %d,%d, got %+v", id1, id2, got)
	}

	// Delivered alerts drop out of the queue
	store.SetStatus(ctx, id1, domain.AlertSent)
	store.SetStatus(ctx, id2, domain.AlertFailed)

	got, _ = store.ClaimQueued(ctx, 10)
	if len(got) != 1 || got[0].ID != id3 {
		t.Errorf("expected only %d queued, got %+v", id3, got)
	}
}

func TestAlertStore_ClaimQueuedIsDurable(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	store.Insert(ctx, queuedAlert(1))
	store.Insert(ctx, queuedAlert(2))

	got, err := store.ClaimQueued(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 claimed, got %d", len(got))
	}
	for _, a := range got {
		if a.Status != domain.AlertSending {
			t.Errorf("alert %d: expected status sending, got %q", a.ID, a.Status)
		}
	}

	// Claimed alerts stay out of the queue until a delivery outcome lands,
	// even across another worker's poll.
	again, _ := store.ClaimQueued(ctx, 10)
	if len(again) != 0 {
		t.Errorf("expected no alerts on second claim, got %+v", again)
	}
	if n, _ := store.CountByStatus(ctx, domain.AlertSending); n != 2 {
		t.Errorf("expected 2 sending, got %d", n)
	}
}

func TestAlertStore_SetStatusNotFound(t *testing.T) {
	store := NewAlertStore()

	err := store.SetStatus(context.Background(), 99, domain.AlertSent)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertStore_CountByStatus(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	id1, _ := store.Insert(ctx, queuedAlert(1))
	store.Insert(ctx, queuedAlert(2))
	store.SetStatus(ctx, id1, domain.AlertSent)

	if n, _ := store.CountByStatus(ctx, domain.AlertQueued); n != 1 {
		t.Errorf("expected 1 queued, got %d", n)
	}
	if n, _ := store.CountByStatus(ctx, domain.AlertSent); n != 1 {
		t.Errorf("expected 1 sent, got %d", n)
	}
	if n, _ := store.CountByStatus(ctx, domain.AlertFailed); n != 0 {
		t.Errorf("expected 0 failed, got %d", n)
	}
}

func TestAlertConfigStore_ActiveForWallet(t *testing.T) {
	store := NewAlertConfigStore()
	ctx := context.Background()

	cfg := func(wallet string, active bool) *domain.AlertConfig {
		return &domain.AlertConfig{SubscriberID: "sub", Wallet: wallet, Active: active}
	}

	id1, _ := store.Insert(ctx, cfg("w1", true))
	store.Insert(ctx, cfg("w1", false))
	store.Insert(ctx, cfg("w2", true))

	got, err := store.ActiveForWallet(ctx, "w1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != id1 {
		t.Errorf("expected only active w1 config, got %+v", got)
	}
}

func TestAlertConfigStore_Deactivate(t *testing.T) {
	store := NewAlertConfigStore()
	ctx := context.Background()

	id, _ := store.Insert(ctx, &domain.AlertConfig{SubscriberID: "sub", Wallet: "w1", Active: true})
	if err := store.Deactivate(ctx, id); err != nil {
		t.Fatal(err)
	}

	got, _ := store.ActiveForWallet(ctx, "w1")
	if len(got) != 0 {
		t.Errorf("deactivated config still active: %+v", got)
	}

	if err := store.Deactivate(ctx, 99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertConfigStore_BySubscriber(t *testing.T) {
	store := NewAlertConfigStore()
	ctx := context.Background()

	store.Insert(ctx, &domain.AlertConfig{SubscriberID: "alice", Wallet: "w1", Active: true})
	store.Insert(ctx, &domain.AlertConfig{SubscriberID: "alice", Wallet: "w2", Active: true})
	store.Insert(ctx, &domain.AlertConfig{SubscriberID: "bob", Wallet: "w1", Active: true})

	got, err := store.BySubscriber(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 configs for alice, got %d", len(got))
	}
}
