// Package positions implements FIFO lot tracking per (wallet, token) pair.
// Every buy opens a new lot; every sell closes the single oldest open lot.
package positions

import (
	"context"
	"errors"
	"log"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// Outcome reports what a trade event did to position state.
type Outcome int

const (
	NoChange Outcome = iota
	OpenedLot
	ClosedLot
)

// Tracker applies trade events to the position ledger.
type Tracker struct {
	logger *log.Logger
}

// NewTracker creates a Tracker. A nil logger falls back to log.Default.
func NewTracker(logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{logger: logger}
}

// Apply mutates position state for one stored trade. Buys always open a new
// lot, even when other lots for the pair are still open. Sells close the
// oldest open lot; a sell with no open lot is a warning, not an error, since
// the feed can show a sell of holdings acquired before tracking started.
func (t *Tracker) Apply(ctx context.Context, store storage.PositionStore, ev *domain.TradeEvent, tradeID int64) (Outcome, error) {
	switch ev.Action {
	case domain.ActionBuy:
		return t.open(ctx, store, ev, tradeID)
	case domain.ActionSell:
		return t.closeOldest(ctx, store, ev, tradeID)
	default:
		return NoChange, storage.ErrInvalidInput
	}
}

func (t *Tracker) open(ctx context.Context, store storage.PositionStore, ev *domain.TradeEvent, tradeID int64) (Outcome, error) {
	_, err := store.Open(ctx, &domain.Position{
		Wallet:            ev.Wallet,
		Token:             ev.Token,
		TokenName:         ev.TokenName,
		TokenSymbol:       ev.TokenSymbol,
		EntryTradeID:      tradeID,
		EntryTimestamp:    ev.Timestamp,
		EntryPrice:        ev.Price,
		EntryAmountSOL:    ev.AmountSOL,
		EntryAmountTokens: ev.AmountTokens,
		Status:            domain.PositionOpen,
	})
	if err != nil {
		return NoChange, err
	}
	return OpenedLot, nil
}

func (t *Tracker) closeOldest(ctx context.Context, store storage.PositionStore, ev *domain.TradeEvent, tradeID int64) (Outcome, error) {
	pos, err := store.OldestOpen(ctx, ev.Wallet, ev.Token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			t.logger.Printf("WARN no open position for %s selling %s", short(ev.Wallet), short(ev.Token))
			return NoChange, nil
		}
		return NoChange, err
	}

	pos.ExitTradeID = tradeID
	pos.ExitTimestamp = ev.Timestamp
	pos.ExitPrice = ev.Price
	pos.ExitAmountSOL = ev.AmountSOL
	pos.ProfitSOL = ev.AmountSOL - pos.EntryAmountSOL
	if pos.EntryAmountSOL > 0 {
		pos.ProfitPercent = pos.ProfitSOL / pos.EntryAmountSOL * 100
	} else {
		pos.ProfitPercent = 0
	}
	pos.HoldTimeMins = (ev.Timestamp - pos.EntryTimestamp) / 60

	if err := store.Close(ctx, pos); err != nil {
		return NoChange, err
	}
	return ClosedLot, nil
}

// short truncates an address for log lines.
func short(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8] + "..."
}
