// Package alerting matches scored buy events against subscriber thresholds
// and delivers the resulting queued notifications.
package alerting

import (
	"context"
	"fmt"
	"log"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// Trigger enqueues alerts for qualifying buys. It runs inside the per-event
// transaction, after the stats/score update, so thresholds are checked
// against post-trade state.
type Trigger struct {
	logger *log.Logger
}

// NewTrigger creates a Trigger. A nil logger falls back to log.Default.
func NewTrigger(logger *log.Logger) *Trigger {
	if logger == nil {
		logger = log.Default()
	}
	return &Trigger{logger: logger}
}

// Check matches the trade against every active config watching the wallet
// and enqueues one alert row per match. Sells never trigger. There is no
// dedup beyond one row per (config, trade): a wallet buying twice enqueues
// twice, even to the same subscriber. Returns the number queued.
func (t *Trigger) Check(ctx context.Context, ledger storage.Ledger, wallet *domain.Wallet, ev *domain.TradeEvent, tradeID int64, now int64) (int, error) {
	if ev.Action != domain.ActionBuy {
		return 0, nil
	}

	configs, err := ledger.AlertConfigs().ActiveForWallet(ctx, ev.Wallet)
	if err != nil {
		return 0, fmt.Errorf("load configs for %s: %w", ev.Wallet, err)
	}

	queued := 0
	for _, c := range configs {
		if wallet.PerformanceScore < c.MinScore || ev.AmountSOL < c.MinBuySOL {
			continue
		}

		_, err := ledger.Alerts().Insert(ctx, &domain.Alert{
			ConfigID: c.ID,
			Wallet:   ev.Wallet,
			TradeID:  tradeID,
			QueuedAt: now,
			Status:   domain.AlertQueued,
		})
		if err != nil {
			return queued, fmt.Errorf("enqueue alert for config %d: %w", c.ID, err)
		}
		queued++
	}

	if queued > 0 {
		t.logger.Printf("queued %d alert(s) for %s (score %.1f)", queued, shortAddr(ev.Wallet), wallet.PerformanceScore)
	}
	return queued, nil
}

// shortAddr truncates an address for log lines.
func shortAddr(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8] + "..."
}
