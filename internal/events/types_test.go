package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		name      string
		eventType EventType
		expected  string
	}{
		{"task created", EventTaskCreated, "task.created"},
		{"task updated", EventTaskUpdated, "task.updated"},
		{"claim created", EventClaimCreated, "claim.created"},
		{"claim conflict", EventClaimConflict, "claim.conflict"},
		{"changelog logged", EventChangelogLogged, "changelog.logged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.eventType) != tt.expected {
				t.Errorf("EventType = %v, want %v", tt.eventType, tt.expected)
			}
		})
	}
}

func TestEvent_JSON(t *testing.T) {
	original := &Event{
		ID:     "test-id-123",
		Type:   EventClaimCreated,
		Source: "facade",
		Target: "agent-1",
		Payload: map[string]interface{}{
			"filePath": "src/auth.ts",
			"count":    42,
		},
		CreatedAt: time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC),
	}

	jsonData, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID = %v, want %v", decoded.ID, original.ID)
	}
	if decoded.Type != original.Type {
		t.Errorf("Type = %v, want %v", decoded.Type, original.Type)
	}
	if decoded.Source != original.Source {
		t.Errorf("Source = %v, want %v", decoded.Source, original.Source)
	}
	if decoded.Target != original.Target {
		t.Errorf("Target = %v, want %v", decoded.Target, original.Target)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}

	if decoded.Payload["filePath"] != "src/auth.ts" {
		t.Errorf("Payload.filePath = %v, want 'src/auth.ts'", decoded.Payload["filePath"])
	}
	if int(decoded.Payload["count"].(float64)) != 42 {
		t.Errorf("Payload.count = %v, want 42", decoded.Payload["count"])
	}
}

func TestNewEvent(t *testing.T) {
	beforeCreate := time.Now()

	event := NewEvent(EventTaskCreated, "facade", "agent-1", map[string]interface{}{
		"taskId": "tsk-123",
	})

	afterCreate := time.Now()

	if event.ID == "" {
		t.Error("NewEvent did not generate ID")
	}
	if len(event.ID) != 36 {
		t.Errorf("Generated ID has unexpected length: %d, want 36", len(event.ID))
	}

	if event.CreatedAt.IsZero() {
		t.Error("NewEvent did not set CreatedAt timestamp")
	}
	if event.CreatedAt.Before(beforeCreate) || event.CreatedAt.After(afterCreate) {
		t.Errorf("CreatedAt timestamp %v is outside expected range [%v, %v]",
			event.CreatedAt, beforeCreate, afterCreate)
	}

	if event.Type != EventTaskCreated {
		t.Errorf("Type = %v, want %v", event.Type, EventTaskCreated)
	}
	if event.Source != "facade" {
		t.Errorf("Source = %v, want 'facade'", event.Source)
	}
	if event.Target != "agent-1" {
		t.Errorf("Target = %v, want 'agent-1'", event.Target)
	}
	if event.Payload["taskId"] != "tsk-123" {
		t.Errorf("Payload.taskId = %v, want 'tsk-123'", event.Payload["taskId"])
	}
}

func TestAllEventTypes(t *testing.T) {
	types := AllEventTypes()

	expectedCount := 11
	if len(types) != expectedCount {
		t.Errorf("AllEventTypes returned %d types, want %d", len(types), expectedCount)
	}

	typeMap := make(map[EventType]bool)
	for _, et := range types {
		typeMap[et] = true
	}

	expectedTypes := []EventType{
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

	for _, expected := range expectedTypes {
		if !typeMap[expected] {
			t.Errorf("AllEventTypes missing event type: %v", expected)
		}
	}
}
