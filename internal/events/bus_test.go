package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(nil)

	ch := bus.Subscribe("agent-1", []EventType{EventClaimCreated})

	event := NewEvent(EventClaimCreated, "facade", "agent-1", map[string]interface{}{
		"filePath": "src/auth.ts",
	})
	bus.Publish(event)

	select {
	case received := <-ch:
		if received.ID != event.ID {
			t.Errorf("Expected event ID %s, got %s", event.ID, received.ID)
		}
		if received.Type != EventClaimCreated {
			t.Errorf("Expected event type %s, got %s", EventClaimCreated, received.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Did not receive event within timeout")
	}

	bus.Unsubscribe("agent-1", ch)
}

func TestBus_FilterByType(t *testing.T) {
	bus := NewBus(nil)

	ch := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})

	taskEvent := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
		"taskId": "tsk_1",
	})
	bus.Publish(taskEvent)

	select {
	case received := <-ch:
		if received.Type != EventTaskUpdated {
			t.Errorf("Expected event type %s, got %s", EventTaskUpdated, received.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Did not receive task event")
	}

	claimEvent := NewEvent(EventClaimConflict, "facade", "agent-1", map[string]interface{}{
		"filePath": "y.ts",
	})
	bus.Publish(claimEvent)

	select {
	case received := <-ch:
		t.Errorf("Should not have received event type %s", received.Type)
	case <-time.After(100 * time.Millisecond):
		// Expected timeout
	}

	bus.Unsubscribe("agent-1", ch)
}

func TestBus_BroadcastAll(t *testing.T) {
	bus := NewBus(nil)

	ch1 := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})
	ch2 := bus.Subscribe("agent-2", []EventType{EventTaskUpdated})
	ch3 := bus.Subscribe("agent-3", []EventType{EventTaskUpdated})

	event := NewEvent(EventTaskUpdated, "facade", "all", map[string]interface{}{
		"broadcast": true,
	})
	bus.Publish(event)

	agents := []struct {
		name string
		ch   <-chan Event
	}{
		{"agent-1", ch1},
		{"agent-2", ch2},
		{"agent-3", ch3},
	}

	for _, agent := range agents {
		select {
		case received := <-agent.ch:
			if received.ID != event.ID {
				t.Errorf("%s: Expected event ID %s, got %s", agent.name, event.ID, received.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("%s: Did not receive broadcast event", agent.name)
		}
	}

	bus.Unsubscribe("agent-1", ch1)
	bus.Unsubscribe("agent-2", ch2)
	bus.Unsubscribe("agent-3", ch3)
}

func TestBus_AllSubscriber(t *testing.T) {
	bus := NewBus(nil)

	allCh := bus.Subscribe("all", []EventType{EventTaskUpdated})
	agent1Ch := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})

	event := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
		"content": "hello agent-1",
	})
	bus.Publish(event)

	select {
	case received := <-agent1Ch:
		if received.ID != event.ID {
			t.Errorf("agent-1: Expected event ID %s, got %s", event.ID, received.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("agent-1 did not receive event")
	}

	select {
	case received := <-allCh:
		if received.ID != event.ID {
			t.Errorf("all subscriber: Expected event ID %s, got %s", event.ID, received.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("all subscriber did not receive event")
	}

	bus.Unsubscribe("all", allCh)
	bus.Unsubscribe("agent-1", agent1Ch)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	ch := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})

	event1 := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
		"content": "first",
	})
	bus.Publish(event1)

	select {
	case <-ch:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Did not receive first event")
	}

	bus.Unsubscribe("agent-1", ch)

	event2 := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
		"content": "second",
	})
	bus.Publish(event2)

	select {
	case event, ok := <-ch:
		if ok {
			t.Errorf("Should not have received event after unsubscribe: %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_MultipleSubscriptionsSameTarget(t *testing.T) {
	bus := NewBus(nil)

	ch1 := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})
	ch2 := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})

	event := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
		"content": "hello",
	})
	bus.Publish(event)

	select {
	case <-ch1:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch1 did not receive event")
	}

	select {
	case <-ch2:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch2 did not receive event")
	}

	bus.Unsubscribe("agent-1", ch1)
	bus.Unsubscribe("agent-1", ch2)
}

func TestBus_NoTypeFilter(t *testing.T) {
	bus := NewBus(nil)

	ch := bus.Subscribe("agent-1", nil)

	bus.Publish(NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{}))
	bus.Publish(NewEvent(EventClaimCreated, "facade", "agent-1", map[string]interface{}{}))
	bus.Publish(NewEvent(EventAgentHeartbeat, "facade", "agent-1", map[string]interface{}{}))

	receivedTypes := make(map[EventType]bool)
	for i := 0; i < 3; i++ {
		select {
		case event := <-ch:
			receivedTypes[event.Type] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("Did not receive all events")
		}
	}

	if !receivedTypes[EventTaskUpdated] {
		t.Error("Did not receive task.updated event")
	}
	if !receivedTypes[EventClaimCreated] {
		t.Error("Did not receive claim.created event")
	}
	if !receivedTypes[EventAgentHeartbeat] {
		t.Error("Did not receive agent.heartbeat event")
	}

	bus.Unsubscribe("agent-1", ch)
}

func TestBus_FullChannelNonBlocking(t *testing.T) {
	bus := NewBus(nil)

	ch := bus.Subscribe("agent-1", []EventType{EventTaskUpdated})

	for i := 0; i < 100; i++ {
		event := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
			"index": i,
		})
		bus.Publish(event)
	}

	done := make(chan bool)
	go func() {
		event := NewEvent(EventTaskUpdated, "facade", "agent-1", map[string]interface{}{
			"index": 100,
		})
		bus.Publish(event)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Publish blocked on full channel")
	}

	bus.Unsubscribe("agent-1", ch)
}
