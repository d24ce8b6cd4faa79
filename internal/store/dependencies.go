package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ErrSelfDependency, ErrDuplicateDependency and ErrDependencyCycle are
// returned by AddDependency; the facade maps them to the PreconditionFailed
// kinds SELF_DEPENDENCY, DUPLICATE, and CYCLE.
var (
	ErrSelfDependency    = fmt.Errorf("task cannot depend on itself")
	ErrDuplicateDependency = fmt.Errorf("dependency already exists")
	ErrDependencyCycle   = fmt.Errorf("dependency would create a cycle")
)

// loadEdges reads the full depends_on relation as taskID -> []dependsOnTaskID.
func (s *Store) loadEdges(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id, depends_on_task_id FROM task_dependencies`)
	if err != nil {
		return nil, fmt.Errorf("load dependency edges: %w", err)
	}
	defer rows.Close()

	edges := make(map[string][]string)
	for rows.Next() {
		var taskID, dependsOn string
		if err := rows.Scan(&taskID, &dependsOn); err != nil {
			return nil, fmt.Errorf("scan dependency edge: %w", err)
		}
		edges[taskID] = append(edges[taskID], dependsOn)
	}
	return edges, rows.Err()
}

// reachable computes the bounded transitive closure of edges from start,
// following depends_on arrows, capped at maxDepth hops.
func reachable(edges map[string][]string, start string, maxDepth int) map[string]bool {
	seen := map[string]bool{}
	frontier := []string{start}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, node := range frontier {
			for _, dep := range edges[node] {
				if !seen[dep] {
					seen[dep] = true
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}
	return seen
}

// AddDependency records taskID depends_on dependsOnTaskID, rejecting
// self-references, duplicates, and cycles.
func (s *Store) AddDependency(ctx context.Context, dep TaskDependency, maxDepth int) error {
	if dep.TaskID == dep.DependsOnTaskID {
		return ErrSelfDependency
	}

	edges, err := s.loadEdges(ctx)
	if err != nil {
		return err
	}
	for _, existing := range edges[dep.TaskID] {
		if existing == dep.DependsOnTaskID {
			return ErrDuplicateDependency
		}
	}
	// taskID would become reachable from dependsOnTaskID's own closure
	// iff dependsOnTaskID can already reach taskID; adding the edge would
	// then close a cycle.
	if reachable(edges, dep.DependsOnTaskID, maxDepth)[dep.TaskID] {
		return ErrDependencyCycle
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_dependencies (id, task_id, depends_on_task_id, created_at)
			VALUES (?, ?, ?, ?)
		`, dep.ID, dep.TaskID, dep.DependsOnTaskID, dep.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert dependency: %w", err)
		}
		return nil
	})
}

// RemoveDependency deletes one depends_on edge.
func (s *Store) RemoveDependency(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete dependency: %w", err)
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
}

// RemoveDependenciesForTask deletes every edge touching taskID on either
// side, applying the cascade-on-task-delete rule.
func (s *Store) RemoveDependenciesForTask(ctx context.Context, taskID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE task_id = ? OR depends_on_task_id = ?`, taskID, taskID)
		return err
	})
}

// ListDependencies returns every depends_on edge for taskID.
func (s *Store) ListDependencies(ctx context.Context, taskID string) ([]TaskDependency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, depends_on_task_id, created_at FROM task_dependencies WHERE task_id = ?
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var out []TaskDependency
	for rows.Next() {
		var d TaskDependency
		if err := rows.Scan(&d.ID, &d.TaskID, &d.DependsOnTaskID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// IsTaskReady returns whether every task transitively reachable from
// taskID via depends_on is done, and the list of blocking task ids that
// are not.
func (s *Store) IsTaskReady(ctx context.Context, taskID string, maxDepth int) (bool, []string, error) {
	edges, err := s.loadEdges(ctx)
	if err != nil {
		return false, nil, err
	}
	deps := reachable(edges, taskID, maxDepth)
	if len(deps) == 0 {
		return true, nil, nil
	}

	var blocking []string
	for dep := range deps {
		t, err := s.GetTask(ctx, dep)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return false, nil, err
		}
		if t.Status != StatusDone {
			blocking = append(blocking, dep)
		}
	}
	return len(blocking) == 0, blocking, nil
}
