package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

const minAcceptanceCriteriaLength = 8

// PostIntentInput is the validated request shape for PostIntent.
type PostIntentInput struct {
	TaskID             string
	AgentID            string
	Files              []string
	Boundaries         string
	AcceptanceCriteria string
}

// PostIntent validates and appends an immutable intent row.
func (f *Facade) PostIntent(ctx context.Context, in PostIntentInput) (store.Intent, error) {
	if _, err := f.GetTask(ctx, in.TaskID); err != nil {
		return store.Intent{}, err
	}
	if len(in.Files) == 0 {
		return store.Intent{}, validationError("files must not be empty", nil)
	}
	if len(in.AcceptanceCriteria) < minAcceptanceCriteriaLength {
		return store.Intent{}, validationError("acceptanceCriteria is required and must be descriptive", map[string]any{"minLength": minAcceptanceCriteriaLength})
	}

	intent := store.Intent{
		ID:                 idgen.New("int"),
		TaskID:             in.TaskID,
		AgentID:            in.AgentID,
		Files:              in.Files,
		Boundaries:         in.Boundaries,
		AcceptanceCriteria: in.AcceptanceCriteria,
		CreatedAt:          f.now(),
	}
	if err := f.store.PostIntent(ctx, intent); err != nil {
		return store.Intent{}, internalError("post intent", err)
	}
	// Intent postings are not part of the changelog's closed
	// change_type vocabulary (spec.md §3); the bus publish below is the
	// only record of this mutation outside the intents table itself.
	f.publish(events.EventIntentPosted, in.AgentID, map[string]any{"taskId": in.TaskID, "intentId": intent.ID})
	return intent, nil
}

// ListIntents returns every intent for taskID, newest first.
func (f *Facade) ListIntents(ctx context.Context, taskID string) ([]store.Intent, error) {
	intents, err := f.store.ListIntents(ctx, taskID)
	if err != nil {
		return nil, internalError("list intents", err)
	}
	return intents, nil
}

// HasIntentForFiles reports whether agentID's declared intent files
// (across every task) cover the requested files.
func (f *Facade) HasIntentForFiles(ctx context.Context, agentID string, files []string) (bool, []string, error) {
	has, missing, err := f.store.HasIntentForFiles(ctx, agentID, files)
	if err != nil {
		return false, nil, internalError("check intent coverage", err)
	}
	return has, missing, nil
}
