package facade

import (
	"context"
	"database/sql"

	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/store"
)

// AgentView pairs a registered agent with its derived liveness status.
type AgentView struct {
	store.Agent
	Status store.AgentStatus
}

func (f *Facade) deriveStatus(ctx context.Context, a store.Agent, now int64) (store.AgentStatus, error) {
	if now-a.LastHeartbeat > f.cfg.AgentOfflineAfterMs {
		return store.AgentOffline, nil
	}
	active, err := f.store.HasInProgressTask(ctx, a.AgentID)
	if err != nil {
		return "", internalError("check in-progress task", err)
	}
	if active {
		return store.AgentActive, nil
	}
	return store.AgentIdle, nil
}

// RegisterOrHeartbeat upserts the agent registry row: first call sets
// registeredAt, every call bumps lastHeartbeat.
func (f *Facade) RegisterOrHeartbeat(ctx context.Context, agentID string, capabilities []string, metadata map[string]string) (AgentView, error) {
	if agentID == "" {
		return AgentView{}, validationError("agentId is required", nil)
	}

	now := f.now()
	a, err := f.store.RegisterOrHeartbeat(ctx, agentID, capabilities, metadata, now)
	if err != nil {
		return AgentView{}, internalError("register or heartbeat agent", err)
	}

	status, err := f.deriveStatus(ctx, a, now)
	if err != nil {
		return AgentView{}, err
	}

	if a.RegisteredAt == now {
		// Agent registration is bus-scoped, not changelog-scoped (spec.md
		// §3's closed change_type vocabulary has no agent entries).
		f.publish(events.EventAgentRegistered, agentID, map[string]any{"agentId": agentID, "capabilities": capabilities})
	}
	f.publish(events.EventAgentHeartbeat, agentID, map[string]any{"agentId": agentID})
	return AgentView{Agent: a, Status: status}, nil
}

// ListAgents returns every registered agent with derived liveness.
func (f *Facade) ListAgents(ctx context.Context) ([]AgentView, error) {
	agents, err := f.store.ListAgents(ctx)
	if err != nil {
		return nil, internalError("list agents", err)
	}
	now := f.now()
	views := make([]AgentView, 0, len(agents))
	for _, a := range agents {
		status, err := f.deriveStatus(ctx, a, now)
		if err != nil {
			return nil, err
		}
		views = append(views, AgentView{Agent: a, Status: status})
	}
	return views, nil
}

// GetAgent fetches a single agent with derived liveness.
func (f *Facade) GetAgent(ctx context.Context, agentID string) (AgentView, error) {
	a, err := f.store.GetAgent(ctx, agentID)
	if err == sql.ErrNoRows {
		return AgentView{}, notFoundError("agent not found", map[string]any{"agentId": agentID})
	}
	if err != nil {
		return AgentView{}, internalError("get agent", err)
	}
	status, err := f.deriveStatus(ctx, a, f.now())
	if err != nil {
		return AgentView{}, err
	}
	return AgentView{Agent: a, Status: status}, nil
}
