package facade

import (
	"context"
	"testing"
	"time"

	"github.com/scrumhq/scrum/internal/clock"
	"github.com/scrumhq/scrum/internal/config"
	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/store"
)

func newTestFacade(t *testing.T) (*Facade, *clock.Virtual) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	vc := clock.NewVirtual(1_700_000_000_000)
	f := New(db, events.NewBus(nil), vc, config.Defaults())
	return f, vc
}

// S1: happy path — create task, post intent, claim, attach evidence,
// release claim, move task to done.
func TestFacade_HappyPath(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	task, err := f.CreateTask(ctx, CreateTaskInput{Title: "wire up auth", Priority: store.PriorityHigh})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	intent, err := f.PostIntent(ctx, PostIntentInput{
		TaskID:             task.ID,
		AgentID:            "agent-1",
		Files:              []string{"src/auth.go"},
		AcceptanceCriteria: "login endpoint returns a signed token",
	})
	if err != nil {
		t.Fatalf("post intent: %v", err)
	}
	if intent.TaskID != task.ID {
		t.Fatalf("intent taskId = %s, want %s", intent.TaskID, task.ID)
	}

	claims, err := f.CreateClaim(ctx, CreateClaimInput{AgentID: "agent-1", Files: []string{"src/auth.go"}, TTLSeconds: 600})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}

	if _, err := f.LogChange(ctx, LogChangeInput{
		TaskID:     task.ID,
		AgentID:    "agent-1",
		FilePath:   "src/auth.go",
		ChangeType: store.ChangeFileModify,
		Summary:    "implemented login",
	}); err != nil {
		t.Fatalf("log change: %v", err)
	}

	if _, err := f.AttachEvidence(ctx, AttachEvidenceInput{
		TaskID:  task.ID,
		AgentID: "agent-1",
		Command: "go test ./...",
		Output:  "ok",
	}); err != nil {
		t.Fatalf("attach evidence: %v", err)
	}

	released, err := f.ReleaseClaims(ctx, "agent-1", nil)
	if err != nil {
		t.Fatalf("release claims: %v", err)
	}
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}

	inProgress := store.StatusInProgress
	if _, err := f.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &inProgress}); err != nil {
		t.Fatalf("move to in_progress: %v", err)
	}

	done := store.StatusDone
	result, err := f.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &done})
	if err != nil {
		t.Fatalf("move to done: %v", err)
	}
	if result.Task.Status != store.StatusDone {
		t.Fatalf("status = %s, want done", result.Task.Status)
	}
	if result.Task.CompletedAt == nil {
		t.Fatal("completedAt not stamped")
	}
}

// S2: a second agent claiming an already-claimed file gets a
// ConflictError/CLAIM_CONFLICT, not a silent overwrite.
func TestFacade_ClaimConflict(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	task, _ := f.CreateTask(ctx, CreateTaskInput{Title: "shared file work"})
	for _, agent := range []string{"agent-1", "agent-2"} {
		if _, err := f.PostIntent(ctx, PostIntentInput{
			TaskID:             task.ID,
			AgentID:            agent,
			Files:              []string{"src/shared.go"},
			AcceptanceCriteria: "shared file edited correctly",
		}); err != nil {
			t.Fatalf("post intent for %s: %v", agent, err)
		}
	}

	if _, err := f.CreateClaim(ctx, CreateClaimInput{AgentID: "agent-1", Files: []string{"src/shared.go"}, TTLSeconds: 600}); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	_, err := f.CreateClaim(ctx, CreateClaimInput{AgentID: "agent-2", Files: []string{"src/shared.go"}, TTLSeconds: 600})
	if err == nil {
		t.Fatal("expected conflict, got nil error")
	}
	fe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *facade.Error, got %T", err)
	}
	if fe.Kind != KindConflict || fe.Reason != ReasonClaimConflict {
		t.Fatalf("got kind=%s reason=%s, want ConflictError/CLAIM_CONFLICT", fe.Kind, fe.Reason)
	}
}

// S3: a claim's TTL expiry is derived at read time from the clock,
// with no background sweep required.
func TestFacade_ClaimExpiryViaVirtualClock(t *testing.T) {
	f, vc := newTestFacade(t)
	ctx := context.Background()

	task, _ := f.CreateTask(ctx, CreateTaskInput{Title: "short-lived claim"})
	if _, err := f.PostIntent(ctx, PostIntentInput{
		TaskID:             task.ID,
		AgentID:            "agent-1",
		Files:              []string{"src/tmp.go"},
		AcceptanceCriteria: "temporary file touched briefly",
	}); err != nil {
		t.Fatalf("post intent: %v", err)
	}

	if _, err := f.CreateClaim(ctx, CreateClaimInput{AgentID: "agent-1", Files: []string{"src/tmp.go"}, TTLSeconds: 5}); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	live, err := f.GetAgentClaims(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get agent claims: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected 1 live claim before expiry, got %d", len(live))
	}

	vc.Advance(10 * time.Second)

	expired, err := f.GetAgentClaims(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get agent claims after expiry: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("expected 0 live claims after expiry, got %d", len(expired))
	}

	overlap, err := f.CheckOverlap(ctx, []string{"src/tmp.go"})
	if err != nil {
		t.Fatalf("check overlap: %v", err)
	}
	if _, held := overlap["src/tmp.go"]; held {
		t.Fatal("expired claim should not be reported as held")
	}
}

// S4: an agent that modifies a file it never declared intent for fails
// compliance's FilesMatch check and cannot complete the task.
func TestFacade_ScopeViolationBlocksCompletion(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	task, _ := f.CreateTask(ctx, CreateTaskInput{Title: "scope-limited change"})
	if _, err := f.PostIntent(ctx, PostIntentInput{
		TaskID:             task.ID,
		AgentID:            "agent-1",
		Files:              []string{"src/allowed.go"},
		AcceptanceCriteria: "only allowed.go should change",
	}); err != nil {
		t.Fatalf("post intent: %v", err)
	}
	if _, err := f.LogChange(ctx, LogChangeInput{
		TaskID:     task.ID,
		AgentID:    "agent-1",
		FilePath:   "src/undeclared.go",
		ChangeType: store.ChangeFileModify,
		Summary:    "touched a file outside declared intent",
	}); err != nil {
		t.Fatalf("log change: %v", err)
	}
	if _, err := f.AttachEvidence(ctx, AttachEvidenceInput{TaskID: task.ID, AgentID: "agent-1", Command: "go build ./..."}); err != nil {
		t.Fatalf("attach evidence: %v", err)
	}

	report, err := f.CheckCompliance(ctx, task.ID, "agent-1")
	if err != nil {
		t.Fatalf("check compliance: %v", err)
	}
	if report.FilesMatch.Passed {
		t.Fatal("expected FilesMatch to fail for an undeclared file")
	}
	if report.CanComplete {
		t.Fatal("expected CanComplete to be false")
	}

	inProgress := store.StatusInProgress
	if _, err := f.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &inProgress, AssignedAgent: strPtr("agent-1")}); err != nil {
		t.Fatalf("move to in_progress: %v", err)
	}

	done := store.StatusDone
	_, err = f.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &done})
	if err == nil {
		t.Fatal("expected completion to be blocked by compliance")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonComplianceBlocked {
		t.Fatalf("got %v, want PreconditionFailed/COMPLIANCE_BLOCKED", err)
	}
}

// S5: a file matching a declared boundary (an off-limits path/glob) is
// a boundary violation distinct from an undeclared-file violation, and
// blocks claim release.
func TestFacade_BoundaryViolationBlocksRelease(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	task, _ := f.CreateTask(ctx, CreateTaskInput{Title: "boundary-respecting change"})
	if _, err := f.PostIntent(ctx, PostIntentInput{
		TaskID:             task.ID,
		AgentID:            "agent-1",
		Files:              []string{"src/auth.go", "internal/secrets.go"},
		Boundaries:         "internal/secrets.go",
		AcceptanceCriteria: "auth works without touching secrets handling",
	}); err != nil {
		t.Fatalf("post intent: %v", err)
	}
	if _, err := f.CreateClaim(ctx, CreateClaimInput{AgentID: "agent-1", Files: []string{"src/auth.go", "internal/secrets.go"}, TTLSeconds: 600}); err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if _, err := f.LogChange(ctx, LogChangeInput{
		TaskID:     task.ID,
		AgentID:    "agent-1",
		FilePath:   "internal/secrets.go",
		ChangeType: store.ChangeFileModify,
		Summary:    "touched a boundary file",
	}); err != nil {
		t.Fatalf("log change: %v", err)
	}
	if _, err := f.AttachEvidence(ctx, AttachEvidenceInput{TaskID: task.ID, AgentID: "agent-1", Command: "go test ./..."}); err != nil {
		t.Fatalf("attach evidence: %v", err)
	}

	_, err := f.ReleaseClaims(ctx, "agent-1", nil)
	if err == nil {
		t.Fatal("expected release to be blocked by a boundary violation")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonBoundaryViolation {
		t.Fatalf("got %v, want PreconditionFailed/BOUNDARY_VIOLATION", err)
	}
}

// S6: moving a task to in_progress is rejected while any of its
// dependencies is unfinished.
func TestFacade_DependencyGate(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	blocker, _ := f.CreateTask(ctx, CreateTaskInput{Title: "must finish first"})
	dependent, _ := f.CreateTask(ctx, CreateTaskInput{Title: "depends on the above"})

	if _, err := f.AddDependency(ctx, dependent.ID, blocker.ID); err != nil {
		t.Fatalf("add dependency: %v", err)
	}

	inProgress := store.StatusInProgress
	_, err := f.UpdateTask(ctx, dependent.ID, UpdateTaskInput{Status: &inProgress})
	if err == nil {
		t.Fatal("expected dependency gate to block in_progress transition")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonDependencyBlocked {
		t.Fatalf("got %v, want PreconditionFailed/DEPENDENCY_BLOCKED", err)
	}

	// Once the blocker finishes, the dependent becomes startable.
	blockerInProgress := store.StatusInProgress
	if _, err := f.UpdateTask(ctx, blocker.ID, UpdateTaskInput{Status: &blockerInProgress}); err != nil {
		t.Fatalf("start blocker: %v", err)
	}
	blockerDone := store.StatusDone
	if _, err := f.UpdateTask(ctx, blocker.ID, UpdateTaskInput{Status: &blockerDone}); err != nil {
		t.Fatalf("finish blocker: %v", err)
	}

	if _, err := f.UpdateTask(ctx, dependent.ID, UpdateTaskInput{Status: &inProgress}); err != nil {
		t.Fatalf("expected dependent to start once blocker is done: %v", err)
	}
}

// S7: a dependency that would create a cycle is rejected.
func TestFacade_CycleRejected(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	a, _ := f.CreateTask(ctx, CreateTaskInput{Title: "A"})
	b, _ := f.CreateTask(ctx, CreateTaskInput{Title: "B"})

	if _, err := f.AddDependency(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("A depends_on B: %v", err)
	}

	_, err := f.AddDependency(ctx, b.ID, a.ID)
	if err == nil {
		t.Fatal("expected cycle to be rejected")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonCycle {
		t.Fatalf("got %v, want PreconditionFailed/CYCLE", err)
	}

	_, err = f.AddDependency(ctx, a.ID, a.ID)
	if err == nil {
		t.Fatal("expected self-dependency to be rejected")
	}
	fe, ok = err.(*Error)
	if !ok || fe.Reason != ReasonSelfDependency {
		t.Fatalf("got %v, want PreconditionFailed/SELF_DEPENDENCY", err)
	}
}

// S8: a WIP limit on a status rejects a transition once the lane is
// full, and can be explicitly bypassed with a warning.
func TestFacade_WipLimit(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	if _, err := f.SetWipLimit(ctx, store.StatusInProgress, 1); err != nil {
		t.Fatalf("set wip limit: %v", err)
	}

	first, _ := f.CreateTask(ctx, CreateTaskInput{Title: "first"})
	second, _ := f.CreateTask(ctx, CreateTaskInput{Title: "second"})

	inProgress := store.StatusInProgress
	if _, err := f.UpdateTask(ctx, first.ID, UpdateTaskInput{Status: &inProgress}); err != nil {
		t.Fatalf("start first task: %v", err)
	}

	_, err := f.UpdateTask(ctx, second.ID, UpdateTaskInput{Status: &inProgress})
	if err == nil {
		t.Fatal("expected WIP limit to reject the second transition")
	}
	fe, ok := err.(*Error)
	if !ok || fe.Reason != ReasonWipExceeded {
		t.Fatalf("got %v, want PreconditionFailed/WIP_EXCEEDED", err)
	}

	bypass := false
	result, err := f.UpdateTask(ctx, second.ID, UpdateTaskInput{Status: &inProgress, EnforceWipLimits: &bypass})
	if err != nil {
		t.Fatalf("expected bypass to succeed: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning when bypassing the WIP limit")
	}
}

func strPtr(s string) *string { return &s }
