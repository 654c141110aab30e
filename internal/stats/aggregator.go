// Package stats recomputes rolling wallet performance metrics from the
// ledger after every trade.
package stats

import (
	"context"
	"fmt"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// Scorer turns wallet metrics into a performance score. Injected so the
// aggregator can persist stats and score in one write without depending on
// the scoring package.
type Scorer func(m domain.Metrics, now int64) float64

// Aggregator recomputes wallet aggregates from the underlying trade and
// position rows.
type Aggregator struct {
	scorer Scorer
}

// NewAggregator creates an Aggregator using the given scorer.
func NewAggregator(scorer Scorer) *Aggregator {
	return &Aggregator{scorer: scorer}
}

// Recompute overwrites a wallet's derived fields and performance score from
// its full trade and position history, anchored at now. It is invoked inside
// the per-event transaction so readers never observe stats without the
// matching score.
func (a *Aggregator) Recompute(ctx context.Context, ledger storage.Ledger, address string, now int64) (*domain.Wallet, error) {
	wallet, err := ledger.Wallets().Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load wallet %s: %w", address, err)
	}

	trades, err := ledger.Trades().GetByWallet(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load trades for %s: %w", address, err)
	}

	positions, err := ledger.Positions().GetByWallet(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load positions for %s: %w", address, err)
	}

	s := Compute(trades, positions, now)

	wallet.TotalTrades = s.TotalTrades
	wallet.Wins = s.Wins
	wallet.Losses = s.Losses
	wallet.TotalProfitSOL = s.TotalProfitSOL
	wallet.AvgHoldTimeMins = s.AvgHoldTimeMins
	wallet.Volume24h = s.Volume24h
	wallet.Volume7d = s.Volume7d
	wallet.ROI24h = s.ROI24h
	wallet.ROI7d = s.ROI7d
	wallet.PerformanceScore = a.scorer(wallet.Metrics(), now)

	if err := ledger.Wallets().UpdateAggregates(ctx, wallet); err != nil {
		return nil, fmt.Errorf("persist aggregates for %s: %w", address, err)
	}

	return wallet, nil
}
