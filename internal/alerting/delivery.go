package alerting

import (
	"context"
	"fmt"
	"log"
	"time"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/notify"
	"smart-money-tracker/internal/observability"
	"smart-money-tracker/internal/storage"
)

// DeliveryWorker polls the alert queue and pushes formatted messages
// through a notify.Sender. Failed sends are marked failed and not retried;
// the queue row keeps the terminal status for inspection.
type DeliveryWorker struct {
	ledger   storage.Ledger
	sender   notify.Sender
	logger   *log.Logger
	interval time.Duration
	batch    int
}

// NewDeliveryWorker creates a worker polling every interval, claiming up to
// batch queued alerts per tick.
func NewDeliveryWorker(ledger storage.Ledger, sender notify.Sender, logger *log.Logger, interval time.Duration, batch int) *DeliveryWorker {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 20
	}
	return &DeliveryWorker{
		ledger:   ledger,
		sender:   sender,
		logger:   logger,
		interval: interval,
		batch:    batch,
	}
}

// Run polls until ctx is cancelled.
func (w *DeliveryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Printf("delivery worker started (sender=%s interval=%s)", w.sender.Name(), w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Println("delivery worker stopped")
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil {
				w.logger.Printf("ERROR delivery tick: %v", err)
			}
		}
	}
}

// Tick claims one batch of queued alerts and delivers them.
func (w *DeliveryWorker) Tick(ctx context.Context) error {
	alerts, err := w.ledger.Alerts().ClaimQueued(ctx, w.batch)
	if err != nil {
		return fmt.Errorf("claim queued: %w", err)
	}

	for _, a := range alerts {
		status := domain.AlertSent
		if err := w.deliver(ctx, a); err != nil {
			w.logger.Printf("ERROR deliver alert %d: %v", a.ID, err)
			status = domain.AlertFailed
		}
		if err := w.ledger.Alerts().SetStatus(ctx, a.ID, status); err != nil {
			return fmt.Errorf("set status on alert %d: %w", a.ID, err)
		}
		observability.RecordAlertDelivered(status)
	}
	return nil
}

func (w *DeliveryWorker) deliver(ctx context.Context, a *domain.Alert) error {
	cfg, err := w.ledger.AlertConfigs().ByID(ctx, a.ConfigID)
	if err != nil {
		return fmt.Errorf("load config %d: %w", a.ConfigID, err)
	}

	trade, err := w.ledger.Trades().ByID(ctx, a.TradeID)
	if err != nil {
		return fmt.Errorf("load trade %d: %w", a.TradeID, err)
	}

	wallet, err := w.ledger.Wallets().Get(ctx, a.Wallet)
	if err != nil {
		return fmt.Errorf("load wallet %s: %w", a.Wallet, err)
	}

	return w.sender.Send(ctx, cfg.Destination, FormatAlert(wallet, trade))
}

// FormatAlert renders the notification text for a queued buy alert.
func FormatAlert(w *domain.Wallet, t *domain.Trade) string {
	name := t.TokenSymbol
	if name == "" {
		name = shortAddr(t.Token)
	}
	return fmt.Sprintf(
		"*Smart money buy*\nWallet: `%s`\nScore: %.1f (%d trades, %d wins)\nToken: %s\nSize: %.3f SOL\nTx: `%s`",
		t.Wallet, w.PerformanceScore, w.TotalTrades, w.Wins, name, t.AmountSOL, t.Signature,
	)
}
