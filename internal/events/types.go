package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

// Event type constants: the closed vocabulary published on the bus.
const (
	EventTaskCreated      EventType = "task.created"
	EventTaskUpdated      EventType = "task.updated"
	EventIntentPosted     EventType = "intent.posted"
	EventEvidenceAttached EventType = "evidence.attached"
	EventClaimCreated     EventType = "claim.created"
	EventClaimReleased    EventType = "claim.released"
	EventClaimExtended    EventType = "claim.extended"
	EventClaimConflict    EventType = "claim.conflict"
	EventChangelogLogged  EventType = "changelog.logged"
	EventAgentRegistered  EventType = "agent.registered"
	EventAgentHeartbeat   EventType = "agent.heartbeat"
)

// Event represents a system event that can be published and subscribed to.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Target    string                 `json:"target"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewEvent creates a new event with auto-generated ID and timestamp.
func NewEvent(eventType EventType, source, target string, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Target:    target,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// AllEventTypes returns all defined event types.
func AllEventTypes() []EventType {
	return []EventType{
		EventTaskCreated,
		EventTaskUpdated,
		EventIntentPosted,
		EventEvidenceAttached,
		EventClaimCreated,
		EventClaimReleased,
		EventClaimExtended,
		EventClaimConflict,
		EventChangelogLogged,
		EventAgentRegistered,
		EventAgentHeartbeat,
	}
}
