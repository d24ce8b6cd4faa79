package facade

import (
	"context"
	"fmt"

	"github.com/scrumhq/scrum/internal/clock"
	"github.com/scrumhq/scrum/internal/compliance"
	"github.com/scrumhq/scrum/internal/config"
	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

// Facade composes the store, compliance checker, and event bus behind
// a single operation surface. External callers (the HTTP/WS transport,
// a CLI, or tests) never touch store.Interface or compliance.Checker
// directly.
type Facade struct {
	store      store.Interface
	compliance *compliance.Checker
	bus        *events.Bus
	clock      clock.Clock
	cfg        config.Config
}

// New wires a Facade from its dependencies. cfg supplies every tunable
// the facade reads (TTL bounds, dependency closure depth, clip sizes,
// offline window).
func New(s store.Interface, bus *events.Bus, c clock.Clock, cfg config.Config) *Facade {
	return &Facade{
		store:      s,
		compliance: compliance.New(s),
		bus:        bus,
		clock:      c,
		cfg:        cfg,
	}
}

func (f *Facade) now() int64 {
	return f.clock.NowMillis()
}

func (f *Facade) publish(eventType events.EventType, source string, payload map[string]any) {
	if f.bus == nil {
		return
	}
	f.bus.Publish(events.NewEvent(eventType, source, "all", payload))
}

// emitChangelog writes one changelog entry for a task-lifecycle or file
// mutation; the facade is the only caller of this. Task operations emit
// one entry each (UpdateTask may emit several); intent, claim, evidence
// and agent operations only publish events.
func (f *Facade) emitChangelog(ctx context.Context, entry store.ChangelogEntry) (store.ChangelogEntry, error) {
	entry.ID = idgen.New("chg")
	entry.CreatedAt = f.now()
	if err := f.store.LogChange(ctx, entry); err != nil {
		return store.ChangelogEntry{}, fmt.Errorf("log change: %w", err)
	}
	f.publish(events.EventChangelogLogged, entry.AgentID, map[string]any{
		"id":         entry.ID,
		"taskId":     entry.TaskID,
		"filePath":   entry.FilePath,
		"changeType": entry.ChangeType,
	})
	return entry, nil
}

func taskScopedPath(taskID string) string {
	return "task:" + taskID
}
