package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// LogChange appends a changelog row. This is the only mutation on the
// table; there is deliberately no update or delete.
func (s *Store) LogChange(ctx context.Context, e ChangelogEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO changelog (id, task_id, agent_id, file_path, change_type, summary, diff_snippet, commit_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, nullString(e.TaskID), e.AgentID, e.FilePath, e.ChangeType, e.Summary,
			nullString(e.DiffSnippet), nullString(e.CommitHash), e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert changelog entry: %w", err)
		}
		return nil
	})
}

// LogChangeTx is the same insert run inside a caller-supplied transaction,
// so that a mutation and its changelog entry commit atomically.
func (s *Store) LogChangeTx(ctx context.Context, tx *sql.Tx, e ChangelogEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO changelog (id, task_id, agent_id, file_path, change_type, summary, diff_snippet, commit_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, nullString(e.TaskID), e.AgentID, e.FilePath, e.ChangeType, e.Summary,
		nullString(e.DiffSnippet), nullString(e.CommitHash), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert changelog entry: %w", err)
	}
	return nil
}

const changelogColumns = `id, task_id, agent_id, file_path, change_type, summary, diff_snippet, commit_hash, created_at`

func scanChangelogEntry(row interface{ Scan(...any) error }) (ChangelogEntry, error) {
	var e ChangelogEntry
	var taskID, diffSnippet, commitHash sql.NullString
	if err := row.Scan(&e.ID, &taskID, &e.AgentID, &e.FilePath, &e.ChangeType, &e.Summary, &diffSnippet, &commitHash, &e.CreatedAt); err != nil {
		return ChangelogEntry{}, err
	}
	e.TaskID = taskID.String
	e.DiffSnippet = diffSnippet.String
	e.CommitHash = commitHash.String
	return e, nil
}

// SearchChangelog filters the audit log.
func (s *Store) SearchChangelog(ctx context.Context, f ChangelogFilter) ([]ChangelogEntry, error) {
	query := `SELECT ` + changelogColumns + ` FROM changelog WHERE 1=1`
	var args []any

	if f.FilePath != "" {
		query += ` AND file_path LIKE ?`
		args = append(args, "%"+f.FilePath+"%")
	}
	if f.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, f.AgentID)
	}
	if f.TaskID != "" {
		query += ` AND task_id = ?`
		args = append(args, f.TaskID)
	}
	if f.ChangeType != "" {
		query += ` AND change_type = ?`
		args = append(args, f.ChangeType)
	}
	if f.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *f.Since)
	}
	if f.Until != nil {
		query += ` AND created_at <= ?`
		args = append(args, *f.Until)
	}
	if f.Query != "" {
		query += ` AND (summary LIKE ? OR diff_snippet LIKE ?)`
		like := "%" + f.Query + "%"
		args = append(args, like, like)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search changelog: %w", err)
	}
	defer rows.Close()

	var out []ChangelogEntry
	for rows.Next() {
		e, err := scanChangelogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan changelog entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetFileHistory is a convenience wrapper over SearchChangelog scoped to
// filePath: it keeps entries whose path equals filePath or ends in
// "/"+filePath.
func (s *Store) GetFileHistory(ctx context.Context, filePath string, limit int) ([]ChangelogEntry, error) {
	entries, err := s.SearchChangelog(ctx, ChangelogFilter{FilePath: filePath, Limit: limit})
	if err != nil {
		return nil, err
	}
	var out []ChangelogEntry
	for _, e := range entries {
		if e.FilePath == filePath || strings.HasSuffix(e.FilePath, "/"+filePath) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListChangelogByTaskAgent returns file-scoped changelog rows for
// (taskID, agentID), used by compliance's filesMatch derivation.
func (s *Store) ListChangelogByTaskAgent(ctx context.Context, taskID, agentID string) ([]ChangelogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+changelogColumns+` FROM changelog
		WHERE task_id = ? AND agent_id = ? AND change_type IN ('create','modify','delete')
		ORDER BY created_at DESC
	`, taskID, agentID)
	if err != nil {
		return nil, fmt.Errorf("list changelog by task agent: %w", err)
	}
	defer rows.Close()

	var out []ChangelogEntry
	for rows.Next() {
		e, err := scanChangelogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan changelog entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// NullifyTaskRef clears task_id on every changelog row pointing at a
// deleted task, keeping historical truth.
func (s *Store) NullifyTaskRef(ctx context.Context, taskID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE changelog SET task_id = NULL WHERE task_id = ?`, taskID)
		return err
	})
}

// DistinctAgentsForTask returns every distinct agentID that has touched
// taskID across intents, evidence, or file-scoped changelog rows
// (create/modify/delete), used by the COMPLIANCE_BLOCKED gate on
// transition to done.
func (s *Store) DistinctAgentsForTask(ctx context.Context, taskID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id FROM intents WHERE task_id = ?
		UNION
		SELECT agent_id FROM evidence WHERE task_id = ?
		UNION
		SELECT agent_id FROM changelog WHERE task_id = ? AND change_type IN ('create','modify','delete')
	`, taskID, taskID, taskID)
	if err != nil {
		return nil, fmt.Errorf("distinct agents for task: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan agent id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
