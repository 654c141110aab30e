package memory

import (
	"context"
	"sync"

	"smart-money-tracker/internal/storage"
)

// Ledger groups the in-memory stores behind storage.Ledger. RunInTx
// serializes event units under one mutex: memory stores cannot roll back,
// so atomicity comes from exclusive access plus the pipeline checking the
// duplicate-signature boundary before any position or stat mutation.
type Ledger struct {
	txMu sync.Mutex

	wallets      *WalletStore
	trades       *TradeStore
	positions    *PositionStore
	alertConfigs *AlertConfigStore
	alerts       *AlertStore
}

// NewLedger creates a Ledger backed by fresh in-memory stores.
func NewLedger() *Ledger {
	return &Ledger{
		wallets:      NewWalletStore(),
		trades:       NewTradeStore(),
		positions:    NewPositionStore(),
		alertConfigs: NewAlertConfigStore(),
		alerts:       NewAlertStore(),
	}
}

// Compile-time interface check.
var _ storage.Ledger = (*Ledger)(nil)

func (l *Ledger) Wallets() storage.WalletStore           { return l.wallets }
func (l *Ledger) Trades() storage.TradeStore             { return l.trades }
func (l *Ledger) Positions() storage.PositionStore       { return l.positions }
func (l *Ledger) AlertConfigs() storage.AlertConfigStore { return l.alertConfigs }
func (l *Ledger) Alerts() storage.AlertStore             { return l.alerts }

// RunInTx runs fn with exclusive access to all stores.
func (l *Ledger) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Ledger) error) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return fn(ctx, l)
}
