package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PostIntent appends an immutable intent row.
func (s *Store) PostIntent(ctx context.Context, in Intent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO intents (id, task_id, agent_id, files, boundaries, acceptance_criteria, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, in.ID, in.TaskID, in.AgentID, encodeStrings(in.Files), nullString(in.Boundaries), in.AcceptanceCriteria, in.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert intent: %w", err)
		}
		return nil
	})
}

func scanIntent(row interface{ Scan(...any) error }) (Intent, error) {
	var in Intent
	var files string
	var boundaries sql.NullString
	if err := row.Scan(&in.ID, &in.TaskID, &in.AgentID, &files, &boundaries, &in.AcceptanceCriteria, &in.CreatedAt); err != nil {
		return Intent{}, err
	}
	in.Files = decodeStrings(files)
	in.Boundaries = boundaries.String
	return in, nil
}

const intentColumns = `id, task_id, agent_id, files, boundaries, acceptance_criteria, created_at`

// ListIntents returns every intent for taskID, newest first.
func (s *Store) ListIntents(ctx context.Context, taskID string) ([]Intent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+intentColumns+` FROM intents WHERE task_id = ? ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list intents: %w", err)
	}
	defer rows.Close()

	var out []Intent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// ListIntentsByAgent returns every intent ever posted by agentID, across
// every task, used by HasIntentForFiles and by compliance's declared set.
func (s *Store) ListIntentsByAgent(ctx context.Context, agentID string) ([]Intent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+intentColumns+` FROM intents WHERE agent_id = ? ORDER BY created_at DESC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list intents by agent: %w", err)
	}
	defer rows.Close()

	var out []Intent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// ListIntentsByTaskAgent returns every intent posted by agentID on
// taskID, used by compliance's per-task declared-files derivation.
func (s *Store) ListIntentsByTaskAgent(ctx context.Context, taskID, agentID string) ([]Intent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+intentColumns+` FROM intents WHERE task_id = ? AND agent_id = ? ORDER BY created_at DESC`, taskID, agentID)
	if err != nil {
		return nil, fmt.Errorf("list intents by task agent: %w", err)
	}
	defer rows.Close()

	var out []Intent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// HasIntentForFiles reports whether every member of files is covered by
// the union of agentID's declared intent files across all tasks.
func (s *Store) HasIntentForFiles(ctx context.Context, agentID string, files []string) (bool, []string, error) {
	intents, err := s.ListIntentsByAgent(ctx, agentID)
	if err != nil {
		return false, nil, err
	}
	declared := map[string]bool{}
	for _, in := range intents {
		for _, f := range in.Files {
			declared[f] = true
		}
	}

	var missing []string
	for _, f := range files {
		if !declared[f] {
			missing = append(missing, f)
		}
	}
	return len(missing) == 0, missing, nil
}

// CascadeDeleteIntents removes every intent row for taskID, applying
// the cascade-on-task-delete rule.
func (s *Store) CascadeDeleteIntents(ctx context.Context, taskID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM intents WHERE task_id = ?`, taskID)
		return err
	})
}
