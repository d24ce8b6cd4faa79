package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateWebhook registers an out-of-process event sink layered over
// the event bus.
func (s *Store) CreateWebhook(ctx context.Context, w Webhook) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO webhooks (id, url, event_types, created_at) VALUES (?, ?, ?, ?)
		`, w.ID, w.URL, encodeStrings(w.EventTypes), w.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert webhook: %w", err)
		}
		return nil
	})
}

// ListWebhooks returns every registered webhook.
func (s *Store) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, url, event_types, created_at FROM webhooks ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var out []Webhook
	for rows.Next() {
		var w Webhook
		var eventTypes string
		if err := rows.Scan(&w.ID, &w.URL, &eventTypes, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		w.EventTypes = decodeStrings(eventTypes)
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteWebhook removes a webhook registration.
func (s *Store) DeleteWebhook(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM webhooks WHERE id = ?`, id)
		return err
	})
}

// RecordWebhookDelivery appends a delivery-attempt audit row.
func (s *Store) RecordWebhookDelivery(ctx context.Context, d WebhookDelivery) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO webhook_deliveries (id, webhook_id, event_type, status_code, error, attempt, delivered_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.WebhookID, d.EventType, d.StatusCode, nullString(d.Error), d.Attempt, nullInt64(d.DeliveredAt), d.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert webhook delivery: %w", err)
		}
		return nil
	})
}

// ListWebhookDeliveries returns delivery history for one webhook, newest first.
func (s *Store) ListWebhookDeliveries(ctx context.Context, webhookID string, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, webhook_id, event_type, status_code, error, attempt, delivered_at, created_at
		FROM webhook_deliveries WHERE webhook_id = ? ORDER BY created_at DESC LIMIT ?
	`, webhookID, limit)
	if err != nil {
		return nil, fmt.Errorf("list webhook deliveries: %w", err)
	}
	defer rows.Close()

	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		var errStr sql.NullString
		var deliveredAt sql.NullInt64
		if err := rows.Scan(&d.ID, &d.WebhookID, &d.EventType, &d.StatusCode, &errStr, &d.Attempt, &deliveredAt, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook delivery: %w", err)
		}
		d.Error = errStr.String
		d.DeliveredAt = ptrFromNullInt64(deliveredAt)
		out = append(out, d)
	}
	return out, rows.Err()
}
