package facade

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
	"github.com/scrumhq/scrum/internal/stringutils"
)

// CreateTaskInput is the validated request shape for CreateTask.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    store.Priority
	DueDate     *int64
	Labels      []string
	StoryPoints *int
}

// CreateTask validates and inserts a new task in status backlog.
func (f *Facade) CreateTask(ctx context.Context, in CreateTaskInput) (store.Task, error) {
	if stringutils.IsEmpty(in.Title) {
		return store.Task{}, validationError("title is required", nil)
	}
	priority := in.Priority
	if priority == "" {
		priority = store.PriorityMedium
	}
	if !validPriority(priority) {
		return store.Task{}, validationError("invalid priority", map[string]any{"priority": priority})
	}

	now := f.now()
	t := store.Task{
		ID:          idgen.New("tsk"),
		Title:       in.Title,
		Description: in.Description,
		Status:      store.StatusBacklog,
		Priority:    priority,
		DueDate:     in.DueDate,
		Labels:      in.Labels,
		StoryPoints: in.StoryPoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := f.store.CreateTask(ctx, t); err != nil {
		return store.Task{}, internalError("create task", err)
	}
	if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
		TaskID:     t.ID,
		AgentID:    "system",
		FilePath:   taskScopedPath(t.ID),
		ChangeType: store.ChangeTaskCreated,
		Summary:    fmt.Sprintf("task created: %s", t.Title),
	}); err != nil {
		return store.Task{}, internalError("log task creation", err)
	}
	f.publish(events.EventTaskCreated, "system", map[string]any{"taskId": t.ID})
	return t, nil
}

func validPriority(p store.Priority) bool {
	switch p {
	case store.PriorityCritical, store.PriorityHigh, store.PriorityMedium, store.PriorityLow:
		return true
	}
	return false
}

// GetTask fetches a task by id.
func (f *Facade) GetTask(ctx context.Context, id string) (store.Task, error) {
	t, err := f.store.GetTask(ctx, id)
	if err == sql.ErrNoRows {
		return store.Task{}, notFoundError("task not found", map[string]any{"id": id})
	}
	if err != nil {
		return store.Task{}, internalError("get task", err)
	}
	return t, nil
}

// ListTasks lists tasks matching filter.
func (f *Facade) ListTasks(ctx context.Context, filter store.TaskFilter) ([]store.Task, error) {
	tasks, err := f.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, internalError("list tasks", err)
	}
	return tasks, nil
}

// GetBoard returns the five non-cancelled lanes.
func (f *Facade) GetBoard(ctx context.Context, assignedAgent string, labels []string) (map[store.TaskStatus][]store.Task, error) {
	board, err := f.store.GetBoard(ctx, assignedAgent, labels)
	if err != nil {
		return nil, internalError("get board", err)
	}
	return board, nil
}

// UpdateTaskInput is a sparse patch: nil/zero fields are left unchanged.
// Pointer fields, plus ClearDueDate and SetLabels, disambiguate "not
// present" from "set to zero value", since Go's zero Priority/TaskStatus
// are not valid values.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *store.TaskStatus
	Priority      *store.Priority
	AssignedAgent *string
	DueDate       *int64
	ClearDueDate  bool
	Labels        []string
	SetLabels     bool
	StoryPoints   *int

	// EnforceDependencies and EnforceWipLimits default true; an explicit
	// false (set via the pointer) lets the caller request a warning
	// instead of a hard rejection.
	EnforceDependencies *bool
	EnforceWipLimits    *bool
}

// UpdateTaskResult carries the updated task plus any non-fatal warnings
// emitted when enforcement was disabled.
type UpdateTaskResult struct {
	Task     store.Task
	Warnings []string
}

// UpdateTask applies a partial patch and runs every status-change gate:
// dependency readiness, WIP limits, startedAt/completedAt stamping,
// compliance-on-done, and changelog emission.
func (f *Facade) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (UpdateTaskResult, error) {
	t, err := f.store.GetTask(ctx, id)
	if err == sql.ErrNoRows {
		return UpdateTaskResult{}, notFoundError("task not found", map[string]any{"id": id})
	}
	if err != nil {
		return UpdateTaskResult{}, internalError("get task", err)
	}

	enforceDeps := true
	if in.EnforceDependencies != nil {
		enforceDeps = *in.EnforceDependencies
	}
	enforceWip := true
	if in.EnforceWipLimits != nil {
		enforceWip = *in.EnforceWipLimits
	}

	var warnings []string
	now := f.now()
	prevStatus := t.Status
	prevAssigned := t.AssignedAgent
	prevPriority := t.Priority

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !validPriority(*in.Priority) {
			return UpdateTaskResult{}, validationError("invalid priority", map[string]any{"priority": *in.Priority})
		}
		t.Priority = *in.Priority
	}
	if in.AssignedAgent != nil {
		t.AssignedAgent = *in.AssignedAgent
	}
	if in.ClearDueDate {
		t.DueDate = nil
	} else if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.SetLabels {
		t.Labels = in.Labels
	}
	if in.StoryPoints != nil {
		t.StoryPoints = in.StoryPoints
	}

	statusChanged := false
	if in.Status != nil && *in.Status != prevStatus {
		statusChanged = true
		newStatus := *in.Status

		if newStatus == store.StatusInProgress && prevStatus != store.StatusInProgress {
			ready, blocking, err := f.store.IsTaskReady(ctx, id, f.cfg.DepClosureMaxDepth)
			if err != nil {
				return UpdateTaskResult{}, internalError("check task readiness", err)
			}
			if !ready {
				if enforceDeps {
					return UpdateTaskResult{}, preconditionError(ReasonDependencyBlocked, "task has unfinished dependencies", map[string]any{"blockingTasks": blocking})
				}
				warnings = append(warnings, fmt.Sprintf("dependency check bypassed; blocking tasks: %v", blocking))
			}

			limit, ok, err := f.store.GetWipLimit(ctx, newStatus)
			if err != nil {
				return UpdateTaskResult{}, internalError("get wip limit", err)
			}
			if ok {
				count, err := f.store.CountInStatus(ctx, newStatus)
				if err != nil {
					return UpdateTaskResult{}, internalError("count tasks in status", err)
				}
				if count >= limit.MaxTasks {
					if enforceWip {
						return UpdateTaskResult{}, preconditionError(ReasonWipExceeded, "WIP limit reached for status", map[string]any{"status": newStatus, "limit": limit.MaxTasks})
					}
					warnings = append(warnings, fmt.Sprintf("WIP limit exceeded for %s (limit %d)", newStatus, limit.MaxTasks))
				}
			}
		}

		if newStatus == store.StatusDone {
			agentIDs, err := f.store.DistinctAgentsForTask(ctx, id)
			if err != nil {
				return UpdateTaskResult{}, internalError("list distinct agents for task", err)
			}
			for _, agentID := range agentIDs {
				report, err := f.compliance.Check(ctx, id, agentID, now)
				if err != nil {
					return UpdateTaskResult{}, internalError("compliance check", err)
				}
				if !report.CanComplete {
					return UpdateTaskResult{}, preconditionError(ReasonComplianceBlocked, "one or more agents have not satisfied compliance for this task", map[string]any{"agentId": agentID, "report": report})
				}
			}
		}

		t.Status = newStatus
		if newStatus == store.StatusInProgress && t.StartedAt == nil {
			startedAt := now
			t.StartedAt = &startedAt
		}
		if newStatus == store.StatusDone && t.CompletedAt == nil {
			completedAt := now
			t.CompletedAt = &completedAt
		}
	}

	t.UpdatedAt = now
	if err := f.store.UpdateTask(ctx, t); err != nil {
		return UpdateTaskResult{}, internalError("update task", err)
	}

	if statusChanged {
		if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
			TaskID:     id,
			AgentID:    firstNonEmpty(t.AssignedAgent, "system"),
			FilePath:   taskScopedPath(id),
			ChangeType: store.ChangeTaskStatusChange,
			Summary:    fmt.Sprintf("status changed from %s to %s", prevStatus, t.Status),
		}); err != nil {
			return UpdateTaskResult{}, internalError("log status change", err)
		}
		if t.Status == store.StatusDone {
			if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
				TaskID:     id,
				AgentID:    firstNonEmpty(t.AssignedAgent, "system"),
				FilePath:   taskScopedPath(id),
				ChangeType: store.ChangeTaskCompleted,
				Summary:    "task completed",
			}); err != nil {
				return UpdateTaskResult{}, internalError("log task completion", err)
			}
		}
	}
	if in.AssignedAgent != nil && *in.AssignedAgent != prevAssigned {
		if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
			TaskID:     id,
			AgentID:    *in.AssignedAgent,
			FilePath:   taskScopedPath(id),
			ChangeType: store.ChangeTaskAssigned,
			Summary:    fmt.Sprintf("assigned to %s", *in.AssignedAgent),
		}); err != nil {
			return UpdateTaskResult{}, internalError("log assignment", err)
		}
	}
	if in.Priority != nil && *in.Priority != prevPriority {
		if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
			TaskID:     id,
			AgentID:    firstNonEmpty(t.AssignedAgent, "system"),
			FilePath:   taskScopedPath(id),
			ChangeType: store.ChangeTaskPriorityChange,
			Summary:    fmt.Sprintf("priority changed from %s to %s", prevPriority, t.Priority),
		}); err != nil {
			return UpdateTaskResult{}, internalError("log priority change", err)
		}
	}

	f.publish(events.EventTaskUpdated, firstNonEmpty(t.AssignedAgent, "system"), map[string]any{"taskId": id})
	return UpdateTaskResult{Task: t, Warnings: warnings}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsTaskReady exposes the readiness derivation used internally by
// UpdateTask.
func (f *Facade) IsTaskReady(ctx context.Context, id string) (bool, []string, error) {
	ready, blocking, err := f.store.IsTaskReady(ctx, id, f.cfg.DepClosureMaxDepth)
	if err != nil {
		return false, nil, internalError("check task readiness", err)
	}
	return ready, blocking, nil
}

// SetWipLimit sets or overwrites the WIP cap for a status. There is no
// operation that removes a cap; maxTasks 0 blocks every transition into
// the status.
func (f *Facade) SetWipLimit(ctx context.Context, status store.TaskStatus, maxTasks int) (store.WipLimit, error) {
	if maxTasks < 0 {
		return store.WipLimit{}, validationError("maxTasks must be >= 0", nil)
	}
	w := store.WipLimit{Status: status, MaxTasks: maxTasks, UpdatedAt: f.now()}
	if err := f.store.SetWipLimit(ctx, w); err != nil {
		return store.WipLimit{}, internalError("set wip limit", err)
	}
	return w, nil
}

// GetWipLimit returns the configured cap for status, if any.
func (f *Facade) GetWipLimit(ctx context.Context, status store.TaskStatus) (store.WipLimit, bool, error) {
	w, ok, err := f.store.GetWipLimit(ctx, status)
	if err != nil {
		return store.WipLimit{}, false, internalError("get wip limit", err)
	}
	return w, ok, nil
}
