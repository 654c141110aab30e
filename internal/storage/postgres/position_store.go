package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	db dbConn
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{db: pool.Pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

const positionColumns = `
	id, wallet_address, token_address, token_name, token_symbol,
	entry_trade_id, entry_timestamp, entry_price, entry_amount_sol, entry_amount_tokens,
	status, exit_trade_id, exit_timestamp, exit_price, exit_amount_sol,
	profit_sol, profit_percent, hold_time_mins
`

// Open inserts a new open position and returns its ID.
func (s *PositionStore) Open(ctx context.Context, p *domain.Position) (int64, error) {
	if p == nil || p.Wallet == "" || p.Token == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO positions (
			wallet_address, token_address, token_name, token_symbol,
			entry_trade_id, entry_timestamp, entry_price, entry_amount_sol, entry_amount_tokens,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'open')
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(ctx, query,
		p.Wallet,
		p.Token,
		p.TokenName,
		p.TokenSymbol,
		p.EntryTradeID,
		p.EntryTimestamp,
		p.EntryPrice,
		p.EntryAmountSOL,
		p.EntryAmountTokens,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("open position: %w", err)
	}
	return id, nil
}

// OldestOpen returns the oldest open position for (wallet, token).
// FIFO order: entry_timestamp ASC, then id ASC (arrival order tie-break).
func (s *PositionStore) OldestOpen(ctx context.Context, wallet, token string) (*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE wallet_address = $1 AND token_address = $2 AND status = 'open'
		ORDER BY entry_timestamp ASC, id ASC
		LIMIT 1
	`

	p, err := scanPosition(s.db.QueryRow(ctx, query, wallet, token))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("oldest open position: %w", err)
	}
	return p, nil
}

// Close transitions a position from open to closed, writing exit fields.
func (s *PositionStore) Close(ctx context.Context, p *domain.Position) error {
	if p == nil || p.ID == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE positions
		SET status = 'closed', exit_trade_id = $2, exit_timestamp = $3,
			exit_price = $4, exit_amount_sol = $5, profit_sol = $6,
			profit_percent = $7, hold_time_mins = $8
		WHERE id = $1 AND status = 'open'
	`

	tag, err := s.db.Exec(ctx, query,
		p.ID,
		p.ExitTradeID,
		p.ExitTimestamp,
		p.ExitPrice,
		p.ExitAmountSOL,
		p.ProfitSOL,
		p.ProfitPercent,
		p.HoldTimeMins,
	)
	if err != nil {
		return fmt.Errorf("close position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByWallet retrieves all positions for a wallet, ordered by
// (entry_timestamp ASC, id ASC).
func (s *PositionStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE wallet_address = $1
		ORDER BY entry_timestamp ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get positions by wallet: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// scanPosition scans a single position row.
func scanPosition(row pgx.Row) (*domain.Position, error) {
	var p domain.Position
	err := row.Scan(
		&p.ID,
		&p.Wallet,
		&p.Token,
		&p.TokenName,
		&p.TokenSymbol,
		&p.EntryTradeID,
		&p.EntryTimestamp,
		&p.EntryPrice,
		&p.EntryAmountSOL,
		&p.EntryAmountTokens,
		&p.Status,
		&p.ExitTradeID,
		&p.ExitTimestamp,
		&p.ExitPrice,
		&p.ExitAmountSOL,
		&p.ProfitSOL,
		&p.ProfitPercent,
		&p.HoldTimeMins,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanPositions scans multiple rows into a slice of Position.
func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position

	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}
