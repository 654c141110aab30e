package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	db dbConn
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{db: pool.Pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, wallet_address, token_address, token_name, token_symbol, action,
	amount_sol, amount_tokens, timestamp, price, signature, created_at
`

// Insert adds a trade. Returns ErrDuplicateKey if the signature exists.
// The conflict is absorbed with ON CONFLICT DO NOTHING rather than raised,
// so an insert inside RunInTx leaves the surrounding transaction usable.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) (int64, error) {
	if t == nil || t.Wallet == "" || t.Signature == "" {
		return 0, storage.ErrInvalidInput
	}

	createdAt := t.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	query := `
		INSERT INTO trades (
			wallet_address, token_address, token_name, token_symbol, action,
			amount_sol, amount_tokens, timestamp, price, signature, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (signature) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(ctx, query,
		t.Wallet,
		t.Token,
		t.TokenName,
		t.TokenSymbol,
		t.Action,
		t.AmountSOL,
		t.AmountTokens,
		t.Timestamp,
		t.Price,
		t.Signature,
		createdAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert trade: %w", err)
	}
	return id, nil
}

// ByID retrieves a trade by ID. Returns ErrNotFound if not exists.
func (s *TradeStore) ByID(ctx context.Context, id int64) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	defer rows.Close()

	trades, err := scanTrades(rows)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, storage.ErrNotFound
	}
	return trades[0], nil
}

// GetByWallet retrieves all trades for a wallet, ordered by (timestamp, id).
func (s *TradeStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE wallet_address = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// Recent retrieves the newest trades for a wallet, up to limit.
func (s *TradeStore) Recent(ctx context.Context, wallet string, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE wallet_address = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// Count returns the total number of trade rows.
func (s *TradeStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM trades`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return n, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade

		err := rows.Scan(
			&t.ID,
			&t.Wallet,
			&t.Token,
			&t.TokenName,
			&t.TokenSymbol,
			&t.Action,
			&t.AmountSOL,
			&t.AmountTokens,
			&t.Timestamp,
			&t.Price,
			&t.Signature,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
