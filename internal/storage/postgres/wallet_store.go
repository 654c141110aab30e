package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	db dbConn
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{db: pool.Pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

const walletColumns = `
	address, first_seen, last_active, total_trades, wins, losses,
	total_profit_sol, avg_hold_time_mins, volume_24h, volume_7d,
	roi_24h, roi_7d, performance_score, is_tracked
`

// Ensure creates the wallet row if absent and advances last_active. Inside a
// transaction the upsert also locks the row for the rest of the unit.
func (s *WalletStore) Ensure(ctx context.Context, address string, ts int64) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallets (address, first_seen, last_active)
		VALUES ($1, $2, $2)
		ON CONFLICT (address) DO UPDATE
		SET last_active = GREATEST(wallets.last_active, EXCLUDED.last_active)
	`

	if _, err := s.db.Exec(ctx, query, address, ts); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

// Get retrieves a wallet by address. Returns ErrNotFound if not exists.
func (s *WalletStore) Get(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE address = $1`

	w, err := scanWallet(s.db.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// UpdateAggregates overwrites the derived fields of an existing wallet.
func (s *WalletStore) UpdateAggregates(ctx context.Context, w *domain.Wallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE wallets
		SET total_trades = $2, wins = $3, losses = $4,
			total_profit_sol = $5, avg_hold_time_mins = $6,
			volume_24h = $7, volume_7d = $8, roi_24h = $9, roi_7d = $10,
			performance_score = $11
		WHERE address = $1
	`

	tag, err := s.db.Exec(ctx, query,
		w.Address,
		w.TotalTrades,
		w.Wins,
		w.Losses,
		w.TotalProfitSOL,
		w.AvgHoldTimeMins,
		w.Volume24h,
		w.Volume7d,
		w.ROI24h,
		w.ROI7d,
		w.PerformanceScore,
	)
	if err != nil {
		return fmt.Errorf("update wallet aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetTracked flips the tracked flag.
func (s *WalletStore) SetTracked(ctx context.Context, address string, tracked bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE wallets SET is_tracked = $2 WHERE address = $1`, address, tracked)
	if err != nil {
		return fmt.Errorf("set wallet tracked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Leaderboard returns top wallets by score with total_trades >= minTrades.
func (s *WalletStore) Leaderboard(ctx context.Context, minTrades, limit int) ([]*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE total_trades >= $1
		ORDER BY performance_score DESC, address ASC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, minTrades, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

// Count returns the total number of wallet rows.
func (s *WalletStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return n, nil
}

// scanWallet scans a single wallet row.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.Address,
		&w.FirstSeen,
		&w.LastActive,
		&w.TotalTrades,
		&w.Wins,
		&w.Losses,
		&w.TotalProfitSOL,
		&w.AvgHoldTimeMins,
		&w.Volume24h,
		&w.Volume7d,
		&w.ROI24h,
		&w.ROI7d,
		&w.PerformanceScore,
		&w.Tracked,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// scanWallets scans multiple rows into a slice of Wallet.
func scanWallets(rows pgx.Rows) ([]*domain.Wallet, error) {
	var wallets []*domain.Wallet

	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}
