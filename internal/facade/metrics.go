package facade

import (
	"context"

	"github.com/scrumhq/scrum/internal/metrics"
)

// defaultAgingThresholdMs flags a backlog/todo/in_progress/review task
// as aging after 3 days with no completion.
const defaultAgingThresholdMs = 3 * 24 * 60 * 60 * 1000

// defaultDeadWorkIdleMs flags an in_progress task as dead work after
// 2 hours with no update.
const defaultDeadWorkIdleMs = 2 * 60 * 60 * 1000

// Board returns the derived lane-by-lane task counts. Non-authoritative:
// it is a read projection, never consulted by a gating check.
func (f *Facade) Board(ctx context.Context) (metrics.BoardSnapshot, error) {
	snap, err := metrics.Board(ctx, f.store)
	if err != nil {
		return metrics.BoardSnapshot{}, internalError("board metrics", err)
	}
	return snap, nil
}

// Velocity summarizes completions within [since, until).
func (f *Facade) Velocity(ctx context.Context, since, until int64) (metrics.VelocitySnapshot, error) {
	snap, err := metrics.Velocity(ctx, f.store, since, until)
	if err != nil {
		return metrics.VelocitySnapshot{}, internalError("velocity metrics", err)
	}
	return snap, nil
}

// Aging lists non-terminal tasks older than thresholdMs (or the default
// if thresholdMs <= 0).
func (f *Facade) Aging(ctx context.Context, thresholdMs int64) ([]metrics.AgingEntry, error) {
	if thresholdMs <= 0 {
		thresholdMs = defaultAgingThresholdMs
	}
	entries, err := metrics.Aging(ctx, f.store, f.now(), thresholdMs)
	if err != nil {
		return nil, internalError("aging metrics", err)
	}
	return entries, nil
}

// DeadWork lists stalled in_progress tasks idle longer than
// idleThresholdMs (or the default if idleThresholdMs <= 0).
func (f *Facade) DeadWork(ctx context.Context, idleThresholdMs int64) ([]metrics.DeadWorkEntry, error) {
	if idleThresholdMs <= 0 {
		idleThresholdMs = defaultDeadWorkIdleMs
	}
	entries, err := metrics.DeadWork(ctx, f.store, f.now(), idleThresholdMs)
	if err != nil {
		return nil, internalError("dead work metrics", err)
	}
	return entries, nil
}
