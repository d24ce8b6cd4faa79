package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ClaimConflict is returned by CreateClaim when one or more requested
// files are already held by other agents. No rows are written.
type ClaimConflict struct {
	ConflictsWith []string
}

func (c *ClaimConflict) Error() string {
	return fmt.Sprintf("claim conflict with %v", c.ConflictsWith)
}

// CreateClaim runs the full protocol inside one transaction:
// prune expired rows, compute the conflict set, and either report the
// conflict or insert every requested row atomically. The caller has
// already clamped ttlSeconds and enforced the intent pre-guard.
func (s *Store) CreateClaim(ctx context.Context, agentID string, files []string, ttlSeconds int, now int64) (*ClaimConflict, error) {
	expiresAt := now + int64(ttlSeconds)*1000

	var conflict *ClaimConflict
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE expires_at <= ?`, now); err != nil {
			return fmt.Errorf("prune expired claims: %w", err)
		}

		conflicts := map[string]bool{}
		for _, f := range files {
			rows, err := tx.QueryContext(ctx, `
				SELECT agent_id FROM claims WHERE file_path = ? AND agent_id != ? AND expires_at > ?
			`, f, agentID, now)
			if err != nil {
				return fmt.Errorf("check claim conflict: %w", err)
			}
			for rows.Next() {
				var holder string
				if err := rows.Scan(&holder); err != nil {
					rows.Close()
					return fmt.Errorf("scan claim holder: %w", err)
				}
				conflicts[holder] = true
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}
		}

		if len(conflicts) > 0 {
			var holders []string
			for h := range conflicts {
				holders = append(holders, h)
			}
			conflict = &ClaimConflict{ConflictsWith: holders}
			return nil
		}

		for _, f := range files {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO claims (agent_id, file_path, expires_at, created_at) VALUES (?, ?, ?, ?)
				ON CONFLICT(agent_id, file_path) DO UPDATE SET expires_at = excluded.expires_at, created_at = excluded.created_at
			`, agentID, f, expiresAt, now)
			if err != nil {
				return fmt.Errorf("insert claim: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conflict, nil
}

// ReleaseClaims deletes the targeted rows for agentID (all of them if
// files is empty) and returns the count released. The facade has
// already run the evidence/compliance preconditions.
func (s *Store) ReleaseClaims(ctx context.Context, agentID string, files []string) (int, error) {
	var released int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var res sql.Result
		var err error
		if len(files) == 0 {
			res, err = tx.ExecContext(ctx, `DELETE FROM claims WHERE agent_id = ?`, agentID)
		} else {
			for _, f := range files {
				r, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE agent_id = ? AND file_path = ?`, agentID, f)
				if err != nil {
					return fmt.Errorf("release claim: %w", err)
				}
				n, err := r.RowsAffected()
				if err != nil {
					return err
				}
				released += int(n)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("release claims: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		released = int(n)
		return nil
	})
	return released, err
}

// ExtendClaims atomically bumps expiresAt on the targeted rows (all of
// agentID's if files is empty) and returns the count extended.
func (s *Store) ExtendClaims(ctx context.Context, agentID string, files []string, newExpiresAt int64) (int, error) {
	var extended int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var res sql.Result
		var err error
		if len(files) == 0 {
			res, err = tx.ExecContext(ctx, `UPDATE claims SET expires_at = ? WHERE agent_id = ?`, newExpiresAt, agentID)
			if err != nil {
				return fmt.Errorf("extend claims: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			extended = int(n)
			return nil
		}
		for _, f := range files {
			r, err := tx.ExecContext(ctx, `UPDATE claims SET expires_at = ? WHERE agent_id = ? AND file_path = ?`, newExpiresAt, agentID, f)
			if err != nil {
				return fmt.Errorf("extend claim: %w", err)
			}
			n, err := r.RowsAffected()
			if err != nil {
				return err
			}
			extended += int(n)
		}
		return nil
	})
	return extended, err
}

// ListActiveClaims prunes expired rows then aggregates the remainder per
// agentID.
func (s *Store) ListActiveClaims(ctx context.Context, now int64) ([]AggregatedClaim, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE expires_at <= ?`, now); err != nil {
		return nil, fmt.Errorf("prune expired claims: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT agent_id, file_path, expires_at, created_at FROM claims ORDER BY agent_id`)
	if err != nil {
		return nil, fmt.Errorf("list active claims: %w", err)
	}
	defer rows.Close()

	agg := map[string]*AggregatedClaim{}
	var order []string
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.AgentID, &c.FilePath, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		a, ok := agg[c.AgentID]
		if !ok {
			a = &AggregatedClaim{AgentID: c.AgentID, ExpiresAt: c.ExpiresAt, CreatedAt: c.CreatedAt}
			agg[c.AgentID] = a
			order = append(order, c.AgentID)
		}
		a.Files = append(a.Files, c.FilePath)
		if c.ExpiresAt > a.ExpiresAt {
			a.ExpiresAt = c.ExpiresAt
		}
		if c.CreatedAt < a.CreatedAt {
			a.CreatedAt = c.CreatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]AggregatedClaim, 0, len(order))
	for _, id := range order {
		out = append(out, *agg[id])
	}
	return out, nil
}

// GetAgentClaims returns agentID's unexpired claim rows (expires_at >
// now). Expired rows are filtered out of the result but not deleted.
func (s *Store) GetAgentClaims(ctx context.Context, agentID string, now int64) ([]Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id, file_path, expires_at, created_at FROM claims WHERE agent_id = ? AND expires_at > ?
	`, agentID, now)
	if err != nil {
		return nil, fmt.Errorf("get agent claims: %w", err)
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.AgentID, &c.FilePath, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
