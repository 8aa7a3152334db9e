package postgres

import (
	"context"
	"fmt"
	"time"

	"momentum-scanner/internal/domain"
	"momentum-scanner/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Insert persists a new alert and returns it with its assigned ID.
func (s *AlertStore) Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error) {
	if a == nil || a.Symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (
			symbol, price, percent_change, relative_volume, float_shares, has_news, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	stored := *a
	err := s.pool.QueryRow(ctx, query,
		a.Symbol,
		a.Price,
		a.PercentChange,
		a.RelativeVolume,
		a.FloatShares,
		a.HasNews,
		a.CreatedAt,
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	return &stored, nil
}

// ExistsRecentAlert reports whether an alert for symbol was created within
// the given window.
func (s *AlertStore) ExistsRecentAlert(ctx context.Context, symbol string, window time.Duration) (bool, error) {
	if symbol == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE symbol = $1 AND created_at >= $2
		)
	`

	var exists bool
	cutoff := time.Now().Add(-window)
	if err := s.pool.QueryRow(ctx, query, symbol, cutoff).Scan(&exists); err != nil {
		return false, fmt.Errorf("check recent alert: %w", err)
	}
	return exists, nil
}

// ListRecent retrieves the most recent alerts, newest first.
func (s *AlertStore) ListRecent(ctx context.Context, limit int) ([]*domain.Alert, error) {
	query := `
		SELECT id, symbol, price, percent_change, relative_volume, float_shares, has_news, created_at
		FROM alerts
		ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(
			&a.ID,
			&a.Symbol,
			&a.Price,
			&a.PercentChange,
			&a.RelativeVolume,
			&a.FloatShares,
			&a.HasNews,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}
	return alerts, nil
}
