package facade

import (
	"context"
	"database/sql"

	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

// AddBlocker records an impediment on a task. If blockingTaskID is set,
// that task must exist.
func (f *Facade) AddBlocker(ctx context.Context, taskID, agentID, description, blockingTaskID string) (store.Blocker, error) {
	if description == "" {
		return store.Blocker{}, validationError("description is required", nil)
	}
	if _, err := f.GetTask(ctx, taskID); err != nil {
		return store.Blocker{}, err
	}
	if blockingTaskID != "" {
		if _, err := f.GetTask(ctx, blockingTaskID); err != nil {
			return store.Blocker{}, err
		}
	}

	b := store.Blocker{
		ID:             idgen.New("blk"),
		TaskID:         taskID,
		Description:    description,
		BlockingTaskID: blockingTaskID,
		CreatedAt:      f.now(),
		AgentID:        agentID,
	}
	if err := f.store.AddBlocker(ctx, b); err != nil {
		return store.Blocker{}, internalError("add blocker", err)
	}
	if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
		TaskID:     taskID,
		AgentID:    agentID,
		FilePath:   taskScopedPath(taskID),
		ChangeType: store.ChangeBlockerAdded,
		Summary:    "blocker added: " + description,
	}); err != nil {
		return store.Blocker{}, internalError("log blocker added", err)
	}
	return b, nil
}

// ResolveBlocker marks a blocker resolved. Resolving an already-resolved
// blocker is a no-op that returns the current record.
func (f *Facade) ResolveBlocker(ctx context.Context, id string) (store.Blocker, error) {
	b, err := f.store.GetBlocker(ctx, id)
	if err == sql.ErrNoRows {
		return store.Blocker{}, notFoundError("blocker not found", map[string]any{"id": id})
	}
	if err != nil {
		return store.Blocker{}, internalError("get blocker", err)
	}
	if b.ResolvedAt != nil {
		return b, nil
	}

	now := f.now()
	if err := f.store.ResolveBlocker(ctx, id, now); err != nil {
		return store.Blocker{}, internalError("resolve blocker", err)
	}
	if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
		TaskID:     b.TaskID,
		AgentID:    b.AgentID,
		FilePath:   taskScopedPath(b.TaskID),
		ChangeType: store.ChangeBlockerResolved,
		Summary:    "blocker resolved: " + b.Description,
	}); err != nil {
		return store.Blocker{}, internalError("log blocker resolved", err)
	}

	b.ResolvedAt = &now
	return b, nil
}

// ListBlockers returns every blocker on taskID, newest first.
func (f *Facade) ListBlockers(ctx context.Context, taskID string) ([]store.Blocker, error) {
	blockers, err := f.store.ListBlockers(ctx, taskID)
	if err != nil {
		return nil, internalError("list blockers", err)
	}
	return blockers, nil
}

// CountUnresolvedBlockers exposes the open-blocker count for UI chips.
func (f *Facade) CountUnresolvedBlockers(ctx context.Context, taskID string) (int, error) {
	n, err := f.store.CountUnresolvedBlockers(ctx, taskID)
	if err != nil {
		return 0, internalError("count unresolved blockers", err)
	}
	return n, nil
}
