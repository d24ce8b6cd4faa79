package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/compliance"
)

// CheckCompliance derives the compliance report for (taskID, agentID).
// It is a pure read: no changelog entry or event is emitted.
func (f *Facade) CheckCompliance(ctx context.Context, taskID, agentID string) (compliance.Report, error) {
	if _, err := f.GetTask(ctx, taskID); err != nil {
		return compliance.Report{}, err
	}
	report, err := f.compliance.Check(ctx, taskID, agentID, f.now())
	if err != nil {
		return compliance.Report{}, internalError("check compliance", err)
	}
	return report, nil
}
