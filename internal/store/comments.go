package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AddComment appends a comment row.
func (s *Store) AddComment(ctx context.Context, c Comment) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (id, task_id, agent_id, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, c.TaskID, c.AgentID, c.Content, c.CreatedAt, nullInt64(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
}

// UpdateComment overwrites a comment's content and updatedAt.
func (s *Store) UpdateComment(ctx context.Context, id, content string, updatedAt int64) (Comment, error) {
	var c Comment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`, content, updatedAt, id)
		if err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return Comment{}, err
	}
	c, err = s.GetComment(ctx, id)
	return c, err
}

// GetComment fetches a single comment by id.
func (s *Store) GetComment(ctx context.Context, id string) (Comment, error) {
	var c Comment
	var updatedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, agent_id, content, created_at, updated_at FROM comments WHERE id = ?
	`, id).Scan(&c.ID, &c.TaskID, &c.AgentID, &c.Content, &c.CreatedAt, &updatedAt)
	if err != nil {
		return Comment{}, err
	}
	c.UpdatedAt = ptrFromNullInt64(updatedAt)
	return c, nil
}

// ListComments returns every comment on taskId, oldest first.
func (s *Store) ListComments(ctx context.Context, taskID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, agent_id, content, created_at, updated_at
		FROM comments WHERE task_id = ? ORDER BY created_at ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		var updatedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AgentID, &c.Content, &c.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.UpdatedAt = ptrFromNullInt64(updatedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
