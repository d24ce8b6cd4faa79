package store

import (
	"context"
	"database/sql"
	"fmt"
)

// RegisterOrHeartbeat upserts the agent row: the first call
// for a given agentID sets registeredAt, every call bumps lastHeartbeat.
func (s *Store) RegisterOrHeartbeat(ctx context.Context, agentID string, capabilities []string, metadata map[string]string, now int64) (Agent, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM agents WHERE agent_id = ?)`, agentID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check agent exists: %w", err)
		}

		if exists {
			_, err = tx.ExecContext(ctx, `
				UPDATE agents SET last_heartbeat = ?, capabilities = ?, metadata = ? WHERE agent_id = ?
			`, now, encodeStrings(capabilities), nullString(encodeMeta(metadata)), agentID)
			if err != nil {
				return fmt.Errorf("heartbeat agent: %w", err)
			}
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO agents (agent_id, capabilities, metadata, last_heartbeat, registered_at)
				VALUES (?, ?, ?, ?, ?)
			`, agentID, encodeStrings(capabilities), nullString(encodeMeta(metadata)), now, now)
			if err != nil {
				return fmt.Errorf("register agent: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Agent{}, err
	}
	return s.GetAgent(ctx, agentID)
}

// GetAgent fetches a single agent row.
func (s *Store) GetAgent(ctx context.Context, agentID string) (Agent, error) {
	var a Agent
	var capabilities string
	var metadata sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT agent_id, capabilities, metadata, last_heartbeat, registered_at FROM agents WHERE agent_id = ?
	`, agentID).Scan(&a.AgentID, &capabilities, &metadata, &a.LastHeartbeat, &a.RegisteredAt)
	if err != nil {
		return Agent{}, err
	}
	a.Capabilities = decodeStrings(capabilities)
	a.Metadata = decodeMeta(metadata.String)
	return a, nil
}

// ListAgents returns every registered agent.
func (s *Store) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT agent_id, capabilities, metadata, last_heartbeat, registered_at FROM agents ORDER BY registered_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		var a Agent
		var capabilities string
		var metadata sql.NullString
		if err := rows.Scan(&a.AgentID, &capabilities, &metadata, &a.LastHeartbeat, &a.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		a.Capabilities = decodeStrings(capabilities)
		a.Metadata = decodeMeta(metadata.String)
		out = append(out, a)
	}
	return out, rows.Err()
}

// HasInProgressTask reports whether agentID is assigned to any
// in_progress task, used to distinguish active from idle.
func (s *Store) HasInProgressTask(ctx context.Context, agentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks WHERE assigned_agent = ? AND status = ?
	`, agentID, StatusInProgress).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has in-progress task: %w", err)
	}
	return n > 0, nil
}
