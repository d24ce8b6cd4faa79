package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SetWipLimit upserts the WIP cap for status.
func (s *Store) SetWipLimit(ctx context.Context, w WipLimit) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wip_limits (status, max_tasks, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(status) DO UPDATE SET max_tasks = excluded.max_tasks, updated_at = excluded.updated_at
		`, w.Status, w.MaxTasks, w.UpdatedAt)
		if err != nil {
			return fmt.Errorf("set wip limit: %w", err)
		}
		return nil
	})
}

// GetWipLimit returns the configured limit for status, ok=false if none.
func (s *Store) GetWipLimit(ctx context.Context, status TaskStatus) (WipLimit, bool, error) {
	var w WipLimit
	err := s.db.QueryRowContext(ctx, `SELECT status, max_tasks, updated_at FROM wip_limits WHERE status = ?`, status).
		Scan(&w.Status, &w.MaxTasks, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return WipLimit{}, false, nil
	}
	if err != nil {
		return WipLimit{}, false, fmt.Errorf("get wip limit: %w", err)
	}
	return w, true, nil
}

// ListWipLimits returns every configured limit.
func (s *Store) ListWipLimits(ctx context.Context) ([]WipLimit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, max_tasks, updated_at FROM wip_limits`)
	if err != nil {
		return nil, fmt.Errorf("list wip limits: %w", err)
	}
	defer rows.Close()

	var out []WipLimit
	for rows.Next() {
		var w WipLimit
		if err := rows.Scan(&w.Status, &w.MaxTasks, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wip limit: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
