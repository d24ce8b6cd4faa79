package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertTaskTemplate creates or overwrites a named task template.
func (s *Store) UpsertTaskTemplate(ctx context.Context, t TaskTemplate) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_templates (name, title_pattern, default_labels, default_priority, default_acceptance, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				title_pattern = excluded.title_pattern,
				default_labels = excluded.default_labels,
				default_priority = excluded.default_priority,
				default_acceptance = excluded.default_acceptance,
				updated_at = excluded.updated_at
		`, t.Name, t.TitlePattern, encodeStrings(t.DefaultLabels), t.DefaultPriority, t.DefaultAcceptance, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert task template: %w", err)
		}
		return nil
	})
}

// GetTaskTemplate fetches a template by name.
func (s *Store) GetTaskTemplate(ctx context.Context, name string) (TaskTemplate, error) {
	var t TaskTemplate
	var labels string
	err := s.db.QueryRowContext(ctx, `
		SELECT name, title_pattern, default_labels, default_priority, default_acceptance, created_at, updated_at
		FROM task_templates WHERE name = ?
	`, name).Scan(&t.Name, &t.TitlePattern, &labels, &t.DefaultPriority, &t.DefaultAcceptance, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return TaskTemplate{}, err
	}
	t.DefaultLabels = decodeStrings(labels)
	return t, nil
}

// ListTaskTemplates returns every configured template.
func (s *Store) ListTaskTemplates(ctx context.Context) ([]TaskTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, title_pattern, default_labels, default_priority, default_acceptance, created_at, updated_at
		FROM task_templates ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list task templates: %w", err)
	}
	defer rows.Close()

	var out []TaskTemplate
	for rows.Next() {
		var t TaskTemplate
		var labels string
		if err := rows.Scan(&t.Name, &t.TitlePattern, &labels, &t.DefaultPriority, &t.DefaultAcceptance, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task template: %w", err)
		}
		t.DefaultLabels = decodeStrings(labels)
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTaskTemplate removes a template by name.
func (s *Store) DeleteTaskTemplate(ctx context.Context, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM task_templates WHERE name = ?`, name)
		return err
	})
}
