package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	db dbConn
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{db: pool.Pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Insert enqueues an alert and returns its ID.
func (s *AlertStore) Insert(ctx context.Context, a *domain.Alert) (int64, error) {
	if a == nil || a.ConfigID == 0 || a.Wallet == "" {
		return 0, storage.ErrInvalidInput
	}

	status := a.Status
	if status == "" {
		status = domain.AlertQueued
	}

	query := `
		INSERT INTO alert_history (config_id, wallet_address, trade_id, queued_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(ctx, query, a.ConfigID, a.Wallet, a.TradeID, a.QueuedAt, status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	return id, nil
}

// ClaimQueued moves up to limit queued alerts to sending and returns them,
// oldest first. The claim is a single UPDATE so it is durable past this call;
// SKIP LOCKED keeps concurrent delivery workers off rows another worker is
// claiming in the same instant.
func (s *AlertStore) ClaimQueued(ctx context.Context, limit int) ([]*domain.Alert, error) {
	query := `
		WITH claimed AS (
			UPDATE alert_history
			SET status = 'sending'
			WHERE id IN (
				SELECT id
				FROM alert_history
				WHERE status = 'queued'
				ORDER BY id ASC
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, config_id, wallet_address, trade_id, queued_at, status
		)
		SELECT id, config_id, wallet_address, trade_id, queued_at, status
		FROM claimed
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("claim queued alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// SetStatus records the delivery outcome.
func (s *AlertStore) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := s.db.Exec(ctx, `UPDATE alert_history SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set alert status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of alerts in the given status.
func (s *AlertStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM alert_history WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count alerts by status: %w", err)
	}
	return n, nil
}

// scanAlerts scans multiple rows into a slice of Alert.
func scanAlerts(rows pgx.Rows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert

	for rows.Next() {
		var a domain.Alert

		err := rows.Scan(
			&a.ID,
			&a.ConfigID,
			&a.Wallet,
			&a.TradeID,
			&a.QueuedAt,
			&a.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}

		alerts = append(alerts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}
