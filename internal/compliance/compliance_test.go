package compliance

import (
	"context"
	"testing"

	"github.com/scrumhq/scrum/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCheck_FullyCompliant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	task := store.Task{ID: "tsk_1", Title: "t", Status: store.StatusInProgress, Priority: store.PriorityMedium, CreatedAt: 1, UpdatedAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.PostIntent(ctx, store.Intent{ID: "int_1", TaskID: task.ID, AgentID: "agent-1", Files: []string{"a.go"}, AcceptanceCriteria: "a.go implements the feature", CreatedAt: 1}); err != nil {
		t.Fatalf("post intent: %v", err)
	}
	if err := s.AttachEvidence(ctx, store.Evidence{ID: "evd_1", TaskID: task.ID, AgentID: "agent-1", Command: "go test", CreatedAt: 1}); err != nil {
		t.Fatalf("attach evidence: %v", err)
	}
	if err := s.LogChange(ctx, store.ChangelogEntry{TaskID: task.ID, AgentID: "agent-1", FilePath: "a.go", ChangeType: store.ChangeFileModify, CreatedAt: 1}); err != nil {
		t.Fatalf("log change: %v", err)
	}

	c := New(s)
	report, err := c.Check(ctx, task.ID, "agent-1", 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !report.Compliant {
		t.Errorf("expected compliant, score=%d", report.Score)
	}
	if !report.CanComplete {
		t.Error("expected CanComplete true")
	}
	if report.Score != 100 {
		t.Errorf("score = %d, want 100 (no active claims to release)", report.Score)
	}
}

func TestCheck_UndeclaredFileFailsFilesMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	task := store.Task{ID: "tsk_1", Title: "t", Status: store.StatusInProgress, Priority: store.PriorityMedium, CreatedAt: 1, UpdatedAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.PostIntent(ctx, store.Intent{ID: "int_1", TaskID: task.ID, AgentID: "agent-1", Files: []string{"a.go"}, AcceptanceCriteria: "only a.go should change", CreatedAt: 1}); err != nil {
		t.Fatalf("post intent: %v", err)
	}
	if err := s.LogChange(ctx, store.ChangelogEntry{TaskID: task.ID, AgentID: "agent-1", FilePath: "b.go", ChangeType: store.ChangeFileModify, CreatedAt: 1}); err != nil {
		t.Fatalf("log change: %v", err)
	}

	c := New(s)
	report, err := c.Check(ctx, task.ID, "agent-1", 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.FilesMatch.Passed {
		t.Error("expected FilesMatch to fail for a modification outside declared intent")
	}
	if len(report.Undeclared) != 1 || report.Undeclared[0] != "b.go" {
		t.Errorf("undeclared = %v, want [b.go]", report.Undeclared)
	}
	if report.CanComplete {
		t.Error("expected CanComplete false")
	}
}

func TestCheck_BoundaryViolationIsDistinctFromFilesMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	task := store.Task{ID: "tsk_1", Title: "t", Status: store.StatusInProgress, Priority: store.PriorityMedium, CreatedAt: 1, UpdatedAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.PostIntent(ctx, store.Intent{
		ID: "int_1", TaskID: task.ID, AgentID: "agent-1",
		Files:              []string{"a.go", "secrets.go"},
		Boundaries:         "secrets.go",
		AcceptanceCriteria: "a.go should change without touching secrets",
		CreatedAt:          1,
	}); err != nil {
		t.Fatalf("post intent: %v", err)
	}
	if err := s.LogChange(ctx, store.ChangelogEntry{TaskID: task.ID, AgentID: "agent-1", FilePath: "secrets.go", ChangeType: store.ChangeFileModify, CreatedAt: 1}); err != nil {
		t.Fatalf("log change: %v", err)
	}

	c := New(s)
	report, err := c.Check(ctx, task.ID, "agent-1", 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.BoundariesRespected.Passed {
		t.Error("expected BoundariesRespected to fail")
	}
	// secrets.go was declared in Files, so FilesMatch should still pass;
	// the violation is about touching a boundary-marked file, not an
	// undeclared one.
	if !report.FilesMatch.Passed {
		t.Error("expected FilesMatch to pass since secrets.go was declared")
	}
}

func TestCheck_ScoreWeights(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	task := store.Task{ID: "tsk_1", Title: "t", Status: store.StatusInProgress, Priority: store.PriorityMedium, CreatedAt: 1, UpdatedAt: 1}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	c := New(s)
	report, err := c.Check(ctx, task.ID, "agent-1", 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	// No intent, no evidence, nothing modified (FilesMatch/Boundaries
	// vacuously pass), no claims held: 0+0+30+20+10 = 60, below the
	// 70-point compliant threshold.
	if report.Score != 60 {
		t.Errorf("score = %d, want 60", report.Score)
	}
	if report.Compliant {
		t.Error("expected non-compliant below threshold")
	}
}
