package facade

import (
	"context"
	"database/sql"

	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

const maxCommentLength = 8000

// AddComment appends a length-bounded plain-text comment to a task.
func (f *Facade) AddComment(ctx context.Context, taskID, agentID, content string) (store.Comment, error) {
	if content == "" {
		return store.Comment{}, validationError("content is required", nil)
	}
	if len(content) > maxCommentLength {
		return store.Comment{}, validationError("content exceeds maximum length", map[string]any{"max": maxCommentLength})
	}
	if _, err := f.GetTask(ctx, taskID); err != nil {
		return store.Comment{}, err
	}

	c := store.Comment{
		ID:        idgen.New("cmt"),
		TaskID:    taskID,
		AgentID:   agentID,
		Content:   content,
		CreatedAt: f.now(),
	}
	if err := f.store.AddComment(ctx, c); err != nil {
		return store.Comment{}, internalError("add comment", err)
	}
	if _, err := f.emitChangelog(ctx, store.ChangelogEntry{
		TaskID:     taskID,
		AgentID:    agentID,
		FilePath:   taskScopedPath(taskID),
		ChangeType: store.ChangeCommentAdded,
		Summary:    "comment added",
	}); err != nil {
		return store.Comment{}, internalError("log comment", err)
	}
	return c, nil
}

// UpdateComment overwrites a comment's content by id.
func (f *Facade) UpdateComment(ctx context.Context, id, content string) (store.Comment, error) {
	if content == "" {
		return store.Comment{}, validationError("content is required", nil)
	}
	if len(content) > maxCommentLength {
		return store.Comment{}, validationError("content exceeds maximum length", map[string]any{"max": maxCommentLength})
	}
	c, err := f.store.UpdateComment(ctx, id, content, f.now())
	if err == sql.ErrNoRows {
		return store.Comment{}, notFoundError("comment not found", map[string]any{"id": id})
	}
	if err != nil {
		return store.Comment{}, internalError("update comment", err)
	}
	return c, nil
}

// ListComments returns every comment on taskID, oldest first.
func (f *Facade) ListComments(ctx context.Context, taskID string) ([]store.Comment, error) {
	comments, err := f.store.ListComments(ctx, taskID)
	if err != nil {
		return nil, internalError("list comments", err)
	}
	return comments, nil
}
