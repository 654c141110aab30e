package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-money-tracker/internal/domain"
	"smart-money-tracker/internal/storage"
)

// AlertConfigStore implements storage.AlertConfigStore using PostgreSQL.
type AlertConfigStore struct {
	db dbConn
}

// NewAlertConfigStore creates a new AlertConfigStore.
func NewAlertConfigStore(pool *Pool) *AlertConfigStore {
	return &AlertConfigStore{db: pool.Pool}
}

// Compile-time interface check.
var _ storage.AlertConfigStore = (*AlertConfigStore)(nil)

const alertConfigColumns = `
	id, subscriber_id, wallet_address, destination, min_score, min_buy_sol,
	is_active, created_at
`

// Insert adds a subscription and returns its ID.
func (s *AlertConfigStore) Insert(ctx context.Context, c *domain.AlertConfig) (int64, error) {
	if c == nil || c.Wallet == "" || c.SubscriberID == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_configs (
			subscriber_id, wallet_address, destination, min_score, min_buy_sol,
			is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(ctx, query,
		c.SubscriberID,
		c.Wallet,
		c.Destination,
		c.MinScore,
		c.MinBuySOL,
		c.Active,
		c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert alert config: %w", err)
	}
	return id, nil
}

// ByID retrieves a config by ID. Returns ErrNotFound if not exists.
func (s *AlertConfigStore) ByID(ctx context.Context, id int64) (*domain.AlertConfig, error) {
	query := `SELECT ` + alertConfigColumns + ` FROM alert_configs WHERE id = $1`

	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get alert config by id: %w", err)
	}
	defer rows.Close()

	configs, err := scanAlertConfigs(rows)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, storage.ErrNotFound
	}
	return configs[0], nil
}

// ActiveForWallet retrieves all active configs watching a wallet.
func (s *AlertConfigStore) ActiveForWallet(ctx context.Context, wallet string) ([]*domain.AlertConfig, error) {
	query := `
		SELECT ` + alertConfigColumns + `
		FROM alert_configs
		WHERE wallet_address = $1 AND is_active
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get configs for wallet: %w", err)
	}
	defer rows.Close()

	return scanAlertConfigs(rows)
}

// BySubscriber retrieves all active configs owned by a subscriber.
func (s *AlertConfigStore) BySubscriber(ctx context.Context, subscriberID string) ([]*domain.AlertConfig, error) {
	query := `
		SELECT ` + alertConfigColumns + `
		FROM alert_configs
		WHERE subscriber_id = $1 AND is_active
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("get configs by subscriber: %w", err)
	}
	defer rows.Close()

	return scanAlertConfigs(rows)
}

// Deactivate clears the active flag.
func (s *AlertConfigStore) Deactivate(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE alert_configs SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate alert config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanAlertConfigs scans multiple rows into a slice of AlertConfig.
func scanAlertConfigs(rows pgx.Rows) ([]*domain.AlertConfig, error) {
	var configs []*domain.AlertConfig

	for rows.Next() {
		var c domain.AlertConfig

		err := rows.Scan(
			&c.ID,
			&c.SubscriberID,
			&c.Wallet,
			&c.Destination,
			&c.MinScore,
			&c.MinBuySOL,
			&c.Active,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert config row: %w", err)
		}

		configs = append(configs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert config rows: %w", err)
	}

	return configs, nil
}
