// Package metrics derives non-authoritative board/velocity/aging/dead-work
// views from the store. Nothing here gates a write; every value is
// recomputed from current rows rather than tracked incrementally.
package metrics

import (
	"context"
	"fmt"
	"sort"

	"github.com/scrumhq/scrum/internal/store"
)

// BoardSnapshot is the lane-by-lane task count view.
type BoardSnapshot struct {
	Counts map[store.TaskStatus]int `json:"counts"`
	Total  int                      `json:"total"`
}

// VelocitySnapshot summarizes completion throughput.
type VelocitySnapshot struct {
	TasksCompleted    int     `json:"tasksCompleted"`
	StoryPoints       int     `json:"storyPoints"`
	AvgCycleTimeMs    float64 `json:"avgCycleTimeMs"`
}

// AgingEntry flags a task that has sat too long in a non-terminal lane.
type AgingEntry struct {
	TaskID    string `json:"taskId"`
	Title     string `json:"title"`
	Status    store.TaskStatus `json:"status"`
	AgeMs     int64  `json:"ageMs"`
}

// DeadWorkEntry flags a task with no agent activity for a long stretch.
type DeadWorkEntry struct {
	TaskID       string `json:"taskId"`
	Title        string `json:"title"`
	Status       store.TaskStatus `json:"status"`
	IdleMs       int64  `json:"idleMs"`
	AssignedAgent string `json:"assignedAgent,omitempty"`
}

// Reader is the store surface metrics derives from.
type Reader interface {
	GetBoard(ctx context.Context, assignedAgent string, labels []string) (map[store.TaskStatus][]store.Task, error)
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]store.Task, error)
}

// Board counts tasks per lane.
func Board(ctx context.Context, r Reader) (BoardSnapshot, error) {
	board, err := r.GetBoard(ctx, "", nil)
	if err != nil {
		return BoardSnapshot{}, fmt.Errorf("get board: %w", err)
	}
	snap := BoardSnapshot{Counts: map[store.TaskStatus]int{}}
	for status, tasks := range board {
		snap.Counts[status] = len(tasks)
		snap.Total += len(tasks)
	}
	return snap, nil
}

// Velocity summarizes tasks completed within [since, until).
func Velocity(ctx context.Context, r Reader, since, until int64) (VelocitySnapshot, error) {
	tasks, err := r.ListTasks(ctx, store.TaskFilter{Status: store.StatusDone})
	if err != nil {
		return VelocitySnapshot{}, fmt.Errorf("list done tasks: %w", err)
	}

	var snap VelocitySnapshot
	var totalCycle float64
	var cycleCount int
	for _, t := range tasks {
		if t.CompletedAt == nil || *t.CompletedAt < since || *t.CompletedAt >= until {
			continue
		}
		snap.TasksCompleted++
		if t.StoryPoints != nil {
			snap.StoryPoints += *t.StoryPoints
		}
		if t.StartedAt != nil {
			totalCycle += float64(*t.CompletedAt - *t.StartedAt)
			cycleCount++
		}
	}
	if cycleCount > 0 {
		snap.AvgCycleTimeMs = totalCycle / float64(cycleCount)
	}
	return snap, nil
}

// Aging flags non-terminal tasks whose age exceeds thresholdMs, oldest
// first.
func Aging(ctx context.Context, r Reader, now, thresholdMs int64) ([]AgingEntry, error) {
	tasks, err := r.ListTasks(ctx, store.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var out []AgingEntry
	for _, t := range tasks {
		if t.Status == store.StatusDone || t.Status == store.StatusCancelled {
			continue
		}
		age := now - t.CreatedAt
		if age < thresholdMs {
			continue
		}
		out = append(out, AgingEntry{TaskID: t.ID, Title: t.Title, Status: t.Status, AgeMs: age})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgeMs > out[j].AgeMs })
	return out, nil
}

// DeadWork flags in-progress tasks that haven't been updated in
// idleThresholdMs, used to surface stalled agent work.
func DeadWork(ctx context.Context, r Reader, now, idleThresholdMs int64) ([]DeadWorkEntry, error) {
	tasks, err := r.ListTasks(ctx, store.TaskFilter{Status: store.StatusInProgress})
	if err != nil {
		return nil, fmt.Errorf("list in-progress tasks: %w", err)
	}

	var out []DeadWorkEntry
	for _, t := range tasks {
		idle := now - t.UpdatedAt
		if idle < idleThresholdMs {
			continue
		}
		out = append(out, DeadWorkEntry{TaskID: t.ID, Title: t.Title, Status: t.Status, IdleMs: idle, AssignedAgent: t.AssignedAgent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IdleMs > out[j].IdleMs })
	return out, nil
}
