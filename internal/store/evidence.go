package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AttachEvidence appends an evidence row. Output clipping is performed
// by the facade before this call, per the configured output_clip_bytes.
func (s *Store) AttachEvidence(ctx context.Context, e Evidence) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO evidence (id, task_id, agent_id, command, output, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, e.ID, e.TaskID, e.AgentID, e.Command, e.Output, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert evidence: %w", err)
		}
		return nil
	})
}

const evidenceColumns = `id, task_id, agent_id, command, output, created_at`

func scanEvidence(row interface{ Scan(...any) error }) (Evidence, error) {
	var e Evidence
	if err := row.Scan(&e.ID, &e.TaskID, &e.AgentID, &e.Command, &e.Output, &e.CreatedAt); err != nil {
		return Evidence{}, err
	}
	return e, nil
}

// ListEvidence returns every evidence row for taskID, newest first.
func (s *Store) ListEvidence(ctx context.Context, taskID string) ([]Evidence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+evidenceColumns+` FROM evidence WHERE task_id = ? ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()

	var out []Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListAllEvidence returns the most recent evidence across every task,
// bounded by limit.
func (s *Store) ListAllEvidence(ctx context.Context, limit int) ([]Evidence, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+evidenceColumns+` FROM evidence ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list all evidence: %w", err)
	}
	defer rows.Close()

	var out []Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEvidenceByTaskAgent returns the evidence rows for (taskID, agentID),
// used by compliance's evidenceAttached check.
func (s *Store) ListEvidenceByTaskAgent(ctx context.Context, taskID, agentID string) ([]Evidence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+evidenceColumns+` FROM evidence WHERE task_id = ? AND agent_id = ? ORDER BY created_at DESC`, taskID, agentID)
	if err != nil {
		return nil, fmt.Errorf("list evidence by task agent: %w", err)
	}
	defer rows.Close()

	var out []Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// HasEvidenceForTask returns whether agentID has any evidence at all,
// and the distinct set of task ids it has evidence on.
func (s *Store) HasEvidenceForTask(ctx context.Context, agentID string) (bool, []string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT task_id FROM evidence WHERE agent_id = ?`, agentID)
	if err != nil {
		return false, nil, fmt.Errorf("has evidence for task: %w", err)
	}
	defer rows.Close()

	var taskIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return false, nil, fmt.Errorf("scan task id: %w", err)
		}
		taskIDs = append(taskIDs, id)
	}
	return len(taskIDs) > 0, taskIDs, rows.Err()
}

// CascadeDeleteEvidence removes every evidence row for taskID.
func (s *Store) CascadeDeleteEvidence(ctx context.Context, taskID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM evidence WHERE task_id = ?`, taskID)
		return err
	})
}
