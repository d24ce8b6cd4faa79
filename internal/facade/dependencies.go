package facade

import (
	"context"
	"database/sql"
	"errors"

	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

// AddDependency records taskID depends_on dependsOnTaskID, mapping the
// store's sentinel errors to the matching PreconditionFailed reasons.
func (f *Facade) AddDependency(ctx context.Context, taskID, dependsOnTaskID string) (store.TaskDependency, error) {
	if _, err := f.GetTask(ctx, taskID); err != nil {
		return store.TaskDependency{}, err
	}
	if _, err := f.GetTask(ctx, dependsOnTaskID); err != nil {
		return store.TaskDependency{}, err
	}

	dep := store.TaskDependency{
		ID:              idgen.New("dep"),
		TaskID:          taskID,
		DependsOnTaskID: dependsOnTaskID,
		CreatedAt:       f.now(),
	}

	err := f.store.AddDependency(ctx, dep, f.cfg.DepClosureMaxDepth)
	switch {
	case errors.Is(err, store.ErrSelfDependency):
		return store.TaskDependency{}, preconditionError(ReasonSelfDependency, "a task cannot depend on itself", nil)
	case errors.Is(err, store.ErrDuplicateDependency):
		return store.TaskDependency{}, preconditionError(ReasonDuplicate, "dependency already exists", nil)
	case errors.Is(err, store.ErrDependencyCycle):
		return store.TaskDependency{}, preconditionError(ReasonCycle, "dependency would create a cycle", map[string]any{"taskId": taskID, "dependsOnTaskId": dependsOnTaskID})
	case err != nil:
		return store.TaskDependency{}, internalError("add dependency", err)
	}

	if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
		TaskID:     taskID,
		AgentID:    "system",
		FilePath:   taskScopedPath(taskID),
		ChangeType: store.ChangeDependencyAdded,
		Summary:    "dependency added on " + dependsOnTaskID,
	}); err != nil {
		return store.TaskDependency{}, internalError("log dependency added", err)
	}
	f.publish(events.EventTaskUpdated, "system", map[string]any{"taskId": taskID, "dependsOnTaskId": dependsOnTaskID})
	return dep, nil
}

// RemoveDependency deletes a depends_on edge by id.
func (f *Facade) RemoveDependency(ctx context.Context, taskID, dependencyID string) error {
	err := f.store.RemoveDependency(ctx, dependencyID)
	if err == sql.ErrNoRows {
		return notFoundError("dependency not found", map[string]any{"id": dependencyID})
	}
	if err != nil {
		return internalError("remove dependency", err)
	}
	_, err = f.emitChangelog(ctx, store.ChangelogEntry{
		TaskID:     taskID,
		AgentID:    "system",
		FilePath:   taskScopedPath(taskID),
		ChangeType: store.ChangeDependencyRemoved,
		Summary:    "dependency removed",
	})
	return err
}

// ListDependencies returns every depends_on edge for taskID.
func (f *Facade) ListDependencies(ctx context.Context, taskID string) ([]store.TaskDependency, error) {
	deps, err := f.store.ListDependencies(ctx, taskID)
	if err != nil {
		return nil, internalError("list dependencies", err)
	}
	return deps, nil
}
