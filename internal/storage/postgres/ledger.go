package postgres

import (
	"context"
	"fmt"

	"smart-money-tracker/internal/storage"
)

// Ledger groups the five stores over one pool and implements the per-event
// atomic unit. The wallet upsert at the start of each unit takes a row lock,
// so two transactions touching the same wallet serialize while unrelated
// wallets proceed in parallel.
type Ledger struct {
	pool *Pool
	inTx bool

	wallets      *WalletStore
	trades       *TradeStore
	positions    *PositionStore
	alertConfigs *AlertConfigStore
	alerts       *AlertStore
}

// NewLedger creates a Ledger over the given pool.
func NewLedger(pool *Pool) *Ledger {
	return newLedger(pool, pool.Pool, false)
}

func newLedger(pool *Pool, db dbConn, inTx bool) *Ledger {
	return &Ledger{
		pool:         pool,
		inTx:         inTx,
		wallets:      &WalletStore{db: db},
		trades:       &TradeStore{db: db},
		positions:    &PositionStore{db: db},
		alertConfigs: &AlertConfigStore{db: db},
		alerts:       &AlertStore{db: db},
	}
}

// Compile-time interface check.
var _ storage.Ledger = (*Ledger)(nil)

func (l *Ledger) Wallets() storage.WalletStore           { return l.wallets }
func (l *Ledger) Trades() storage.TradeStore             { return l.trades }
func (l *Ledger) Positions() storage.PositionStore       { return l.positions }
func (l *Ledger) AlertConfigs() storage.AlertConfigStore { return l.alertConfigs }
func (l *Ledger) Alerts() storage.AlertStore             { return l.alerts }

// RunInTx runs fn inside a transaction; every store handed to fn is bound to
// it. A non-nil error from fn rolls the whole unit back.
func (l *Ledger) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Ledger) error) error {
	if l.inTx {
		return fn(ctx, l)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newLedger(l.pool, tx, true)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
