package clickhouse

import (
	"context"
	"fmt"

	"smart-money-tracker/internal/domain"
)

// TradeArchiveStore appends processed trades to the trade_archive table.
// The archive is best-effort: ReplacingMergeTree deduplicates on signature,
// so re-archiving after a reconnect is harmless.
type TradeArchiveStore struct {
	conn *Conn
}

// NewTradeArchiveStore creates a new TradeArchiveStore.
func NewTradeArchiveStore(conn *Conn) *TradeArchiveStore {
	return &TradeArchiveStore{conn: conn}
}

// InsertBatch appends a batch of trades to the archive.
func (s *TradeArchiveStore) InsertBatch(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_archive (
			signature, wallet_address, token_address, token_symbol, action,
			amount_sol, amount_tokens, price, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			t.Signature, t.Wallet, t.Token, t.TokenSymbol, t.Action,
			t.AmountSOL, t.AmountTokens, t.Price, uint64(t.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
