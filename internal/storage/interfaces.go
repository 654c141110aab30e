package storage

import (
	"context"

	"smart-money-tracker/internal/domain"
)

// WalletStore provides access to the wallets table.
type WalletStore interface {
	// Ensure creates the wallet row if absent (first_seen = ts) and advances
	// last_active to max(current, ts). Safe to call repeatedly.
	Ensure(ctx context.Context, address string, ts int64) error

	// Get retrieves a wallet by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Wallet, error)

	// UpdateAggregates overwrites the derived fields (trade/win/loss counts,
	// profit, hold time, windowed volume/ROI, performance score).
	UpdateAggregates(ctx context.Context, w *domain.Wallet) error

	// SetTracked flips the tracked flag.
	SetTracked(ctx context.Context, address string, tracked bool) error

	// Leaderboard returns up to limit wallets with total_trades >= minTrades,
	// ordered by performance score descending.
	Leaderboard(ctx context.Context, minTrades, limit int) ([]*domain.Wallet, error)

	// Count returns the total number of wallet rows.
	Count(ctx context.Context) (int, error)
}

// TradeStore provides access to the trades table. Trades are append-only.
type TradeStore interface {
	// Insert adds a trade and returns its ID. Returns ErrDuplicateKey if a
	// trade with the same signature already exists. CreatedAt is stamped at
	// insert time when the caller leaves it zero.
	Insert(ctx context.Context, t *domain.Trade) (int64, error)

	// ByID retrieves a trade by ID. Returns ErrNotFound if not exists.
	ByID(ctx context.Context, id int64) (*domain.Trade, error)

	// GetByWallet retrieves all trades for a wallet, ordered by
	// (timestamp ASC, id ASC).
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error)

	// Recent retrieves the newest trades for a wallet, ordered by
	// (timestamp DESC, id DESC), up to limit.
	Recent(ctx context.Context, wallet string, limit int) ([]*domain.Trade, error)

	// Count returns the total number of trade rows.
	Count(ctx context.Context) (int, error)
}

// PositionStore provides access to the positions table.
type PositionStore interface {
	// Open inserts a new open position and returns its ID.
	Open(ctx context.Context, p *domain.Position) (int64, error)

	// OldestOpen returns the oldest open position for (wallet, token),
	// ordered by (entry_timestamp ASC, id ASC). Returns ErrNotFound when the
	// pair has no open position.
	OldestOpen(ctx context.Context, wallet, token string) (*domain.Position, error)

	// Close transitions the position identified by p.ID from open to closed,
	// writing the exit fields. Returns ErrNotFound if no open position with
	// that ID exists.
	Close(ctx context.Context, p *domain.Position) error

	// GetByWallet retrieves all positions for a wallet, ordered by
	// (entry_timestamp ASC, id ASC).
	GetByWallet(ctx context.Context, wallet string) ([]*domain.Position, error)
}

// AlertConfigStore provides access to the alert_configs table. Rows are
// created by the chat-bot collaborator; the core reads them when matching.
type AlertConfigStore interface {
	// Insert adds a subscription and returns its ID.
	Insert(ctx context.Context, c *domain.AlertConfig) (int64, error)

	// ByID retrieves a config by ID. Returns ErrNotFound if not exists.
	ByID(ctx context.Context, id int64) (*domain.AlertConfig, error)

	// ActiveForWallet retrieves all active configs watching a wallet.
	ActiveForWallet(ctx context.Context, wallet string) ([]*domain.AlertConfig, error)

	// BySubscriber retrieves all active configs owned by a subscriber.
	BySubscriber(ctx context.Context, subscriberID string) ([]*domain.AlertConfig, error)

	// Deactivate clears the active flag. Returns ErrNotFound if absent.
	Deactivate(ctx context.Context, id int64) error
}

// AlertStore provides access to the alert_history table.
type AlertStore interface {
	// Insert enqueues an alert (status queued) and returns its ID.
	Insert(ctx context.Context, a *domain.Alert) (int64, error)

	// ClaimQueued moves up to limit queued alerts to sending and returns
	// them for delivery. A claimed alert stays out of the queue until
	// SetStatus records the outcome, so concurrent workers never double
	// deliver. Alerts stranded in sending by a crash are not redelivered.
	ClaimQueued(ctx context.Context, limit int) ([]*domain.Alert, error)

	// SetStatus records the delivery outcome (sent or failed).
	SetStatus(ctx context.Context, id int64, status string) error

	// CountByStatus returns the number of alerts in the given status.
	CountByStatus(ctx context.Context, status string) (int, error)
}

// Ledger groups the five stores behind one handle and scopes multi-store
// writes to a single atomic unit. RunInTx hands the callback a Ledger whose
// stores are bound to the transaction; either every write in the callback
// commits or none are visible.
type Ledger interface {
	Wallets() WalletStore
	Trades() TradeStore
	Positions() PositionStore
	AlertConfigs() AlertConfigStore
	Alerts() AlertStore

	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Ledger) error) error
}
