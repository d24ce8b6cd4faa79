package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/store"
)

// LogChangeInput is the validated request shape for the public LogChange
// operation, used by external collaborators (the filesystem watcher, an
// agent reporting a commit) to record a file-scoped change directly.
// Task-lifecycle changelog entries are never posted this way; those are
// emitted internally by the facade operation that caused them. Intent,
// claim, evidence, and agent operations never produce a changelog entry
// at all (see store.ChangeType); they are reported only on the event bus.
type LogChangeInput struct {
	TaskID      string
	AgentID     string
	FilePath    string
	ChangeType  store.ChangeType
	Summary     string
	DiffSnippet string
	CommitHash  string
}

var fileChangeTypesPublic = map[store.ChangeType]bool{
	store.ChangeFileCreate: true,
	store.ChangeFileModify: true,
	store.ChangeFileDelete: true,
}

// LogChange appends a file-scoped changelog entry. It is the only
// public mutation on the changelog surface; every other facade
// operation emits its own entry internally and this entry point is
// restricted to the file change_type vocabulary (create|modify|delete)
// so callers cannot forge task-lifecycle events.
func (f *Facade) LogChange(ctx context.Context, in LogChangeInput) (store.ChangelogEntry, error) {
	if in.FilePath == "" {
		return store.ChangelogEntry{}, validationError("filePath is required", nil)
	}
	if in.AgentID == "" {
		return store.ChangelogEntry{}, validationError("agentId is required", nil)
	}
	if !fileChangeTypesPublic[in.ChangeType] {
		return store.ChangelogEntry{}, validationError("changeType must be one of create|modify|delete", map[string]any{"changeType": in.ChangeType})
	}
	if in.TaskID != "" {
		if _, err := f.GetTask(ctx, in.TaskID); err != nil {
			return store.ChangelogEntry{}, err
		}
	}

	entry := store.ChangelogEntry{
		TaskID:      in.TaskID,
		AgentID:     in.AgentID,
		FilePath:    in.FilePath,
		ChangeType:  in.ChangeType,
		Summary:     in.Summary,
		DiffSnippet: in.DiffSnippet,
		CommitHash:  in.CommitHash,
	}
	entry, err := f.emitChangelog(ctx, entry)
	if err != nil {
		return store.ChangelogEntry{}, err
	}
	return entry, nil
}

// SearchChangelog filters the audit log, defaulting Limit when unset.
func (f *Facade) SearchChangelog(ctx context.Context, filter store.ChangelogFilter) ([]store.ChangelogEntry, error) {
	entries, err := f.store.SearchChangelog(ctx, filter)
	if err != nil {
		return nil, internalError("search changelog", err)
	}
	return entries, nil
}

// GetFileHistory returns every changelog entry that touched filePath,
// newest first.
func (f *Facade) GetFileHistory(ctx context.Context, filePath string, limit int) ([]store.ChangelogEntry, error) {
	entries, err := f.store.GetFileHistory(ctx, filePath, limit)
	if err != nil {
		return nil, internalError("get file history", err)
	}
	return entries, nil
}
