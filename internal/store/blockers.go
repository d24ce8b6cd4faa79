package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AddBlocker inserts a blocker row. The facade checks blockingTaskId
// existence before calling this.
func (s *Store) AddBlocker(ctx context.Context, b Blocker) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO blockers (id, task_id, description, blocking_task_id, resolved_at, created_at, agent_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, b.ID, b.TaskID, b.Description, nullString(b.BlockingTaskID), nullInt64(b.ResolvedAt), b.CreatedAt, b.AgentID)
		if err != nil {
			return fmt.Errorf("insert blocker: %w", err)
		}
		return nil
	})
}

func scanBlocker(row interface{ Scan(...any) error }) (Blocker, error) {
	var b Blocker
	var blockingTaskID sql.NullString
	var resolvedAt sql.NullInt64
	if err := row.Scan(&b.ID, &b.TaskID, &b.Description, &blockingTaskID, &resolvedAt, &b.CreatedAt, &b.AgentID); err != nil {
		return Blocker{}, err
	}
	b.BlockingTaskID = blockingTaskID.String
	b.ResolvedAt = ptrFromNullInt64(resolvedAt)
	return b, nil
}

const blockerColumns = `id, task_id, description, blocking_task_id, resolved_at, created_at, agent_id`

// GetBlocker fetches a blocker by id.
func (s *Store) GetBlocker(ctx context.Context, id string) (Blocker, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blockerColumns+` FROM blockers WHERE id = ?`, id)
	return scanBlocker(row)
}

// ListBlockers returns every blocker on taskId, newest first.
func (s *Store) ListBlockers(ctx context.Context, taskID string) ([]Blocker, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+blockerColumns+` FROM blockers WHERE task_id = ? ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list blockers: %w", err)
	}
	defer rows.Close()

	var out []Blocker
	for rows.Next() {
		b, err := scanBlocker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blocker: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ResolveBlocker marks a blocker resolved at resolvedAt. Resolving an
// already-resolved blocker is a no-op; the caller checks that
// before invoking the write.
func (s *Store) ResolveBlocker(ctx context.Context, id string, resolvedAt int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE blockers SET resolved_at = ? WHERE id = ? AND resolved_at IS NULL`, resolvedAt, id)
		if err != nil {
			return fmt.Errorf("resolve blocker: %w", err)
		}
		return nil
	})
}

// CountUnresolvedBlockers returns the open-blocker count for taskId.
func (s *Store) CountUnresolvedBlockers(ctx context.Context, taskID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blockers WHERE task_id = ? AND resolved_at IS NULL`, taskID).Scan(&n)
	return n, err
}

// ClearBlockingTaskRefs nullifies blocking_task_id on every blocker that
// pointed at a now-deleted task, applying the cascade-on-task-delete
// rule.
func (s *Store) ClearBlockingTaskRefs(ctx context.Context, deletedTaskID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE blockers SET blocking_task_id = NULL WHERE blocking_task_id = ?`, deletedTaskID)
		return err
	})
}
