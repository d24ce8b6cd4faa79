package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

// AttachEvidenceInput is the validated request shape for AttachEvidence.
type AttachEvidenceInput struct {
	TaskID  string
	AgentID string
	Command string
	Output  string
}

// AttachEvidence validates that the task exists, clips output to the
// configured byte budget, and appends an immutable evidence row.
func (f *Facade) AttachEvidence(ctx context.Context, in AttachEvidenceInput) (store.Evidence, error) {
	if in.Command == "" {
		return store.Evidence{}, validationError("command is required", nil)
	}
	if _, err := f.GetTask(ctx, in.TaskID); err != nil {
		return store.Evidence{}, err
	}

	output := in.Output
	clip := f.cfg.OutputClipBytes
	if clip > 0 && len(output) > clip {
		output = output[:clip]
	}

	e := store.Evidence{
		ID:        idgen.New("evd"),
		TaskID:    in.TaskID,
		AgentID:   in.AgentID,
		Command:   in.Command,
		Output:    output,
		CreatedAt: f.now(),
	}
	if err := f.store.AttachEvidence(ctx, e); err != nil {
		return store.Evidence{}, internalError("attach evidence", err)
	}
	// Evidence attachment is bus-scoped, not changelog-scoped (spec.md §3's
	// closed change_type vocabulary has no evidence entries).
	f.publish(events.EventEvidenceAttached, in.AgentID, map[string]any{"taskId": in.TaskID, "evidenceId": e.ID})
	return e, nil
}

// ListEvidence returns every evidence row for taskID, newest first.
func (f *Facade) ListEvidence(ctx context.Context, taskID string) ([]store.Evidence, error) {
	evidence, err := f.store.ListEvidence(ctx, taskID)
	if err != nil {
		return nil, internalError("list evidence", err)
	}
	return evidence, nil
}

// ListAllEvidence returns the most recent evidence across every task.
func (f *Facade) ListAllEvidence(ctx context.Context, limit int) ([]store.Evidence, error) {
	evidence, err := f.store.ListAllEvidence(ctx, limit)
	if err != nil {
		return nil, internalError("list all evidence", err)
	}
	return evidence, nil
}

// HasEvidenceForTask reports whether agentID has attached any evidence,
// and the distinct set of task ids it has evidence on.
func (f *Facade) HasEvidenceForTask(ctx context.Context, agentID string) (bool, []string, error) {
	has, taskIDs, err := f.store.HasEvidenceForTask(ctx, agentID)
	if err != nil {
		return false, nil, internalError("check evidence coverage", err)
	}
	return has, taskIDs, nil
}
