package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/scrumhq/scrum/internal/clock"
	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/store"
)

// fakeRegistry is an in-memory registry substituting for *store.Store so
// dispatcher behavior can be tested without the sqlite backend.
type fakeRegistry struct {
	mu         sync.Mutex
	webhooks   []store.Webhook
	deliveries []store.WebhookDelivery
}

func (f *fakeRegistry) ListWebhooks(ctx context.Context) ([]store.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Webhook, len(f.webhooks))
	copy(out, f.webhooks)
	return out, nil
}

func (f *fakeRegistry) RecordWebhookDelivery(ctx context.Context, d store.WebhookDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, d)
	return nil
}

func (f *fakeRegistry) snapshot() []store.WebhookDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.WebhookDelivery, len(f.deliveries))
	copy(out, f.deliveries)
	return out
}

func TestDispatcher_DeliversToMatchingWebhookOnly(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := &fakeRegistry{webhooks: []store.Webhook{
		{ID: "wh_1", URL: srv.URL, EventTypes: []string{string(events.EventTaskCreated)}, CreatedAt: 1},
		{ID: "wh_2", URL: srv.URL, EventTypes: []string{string(events.EventClaimCreated)}, CreatedAt: 1},
	}}
	d := New(reg, clock.NewVirtual(100))

	d.deliver(context.Background(), events.Event{ID: "evt_1", Type: events.EventTaskCreated, Source: "agent-1", Target: "system", Payload: map[string]any{"taskId": "tsk_1"}})

	deliveries := reg.snapshot()
	if len(deliveries) != 1 {
		t.Fatalf("got %d deliveries, want 1 (only wh_1 matches)", len(deliveries))
	}
	if deliveries[0].WebhookID != "wh_1" {
		t.Errorf("delivered to %s, want wh_1", deliveries[0].WebhookID)
	}
	if deliveries[0].StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", deliveries[0].StatusCode)
	}
	if deliveries[0].DeliveredAt == nil {
		t.Error("expected DeliveredAt to be stamped")
	}
}

func TestDispatcher_EmptyEventTypesMatchesEverything(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := &fakeRegistry{webhooks: []store.Webhook{
		{ID: "wh_all", URL: srv.URL, CreatedAt: 1},
	}}
	d := New(reg, clock.NewVirtual(100))

	d.deliver(context.Background(), events.Event{ID: "evt_1", Type: events.EventAgentHeartbeat, Source: "agent-1", Target: "system"})

	deliveries := reg.snapshot()
	if len(deliveries) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(deliveries))
	}
}

func TestDispatcher_RecordsErrorOnUnreachableEndpoint(t *testing.T) {
	reg := &fakeRegistry{webhooks: []store.Webhook{
		{ID: "wh_dead", URL: "http://127.0.0.1:1", CreatedAt: 1},
	}}
	d := New(reg, clock.NewVirtual(100))

	d.deliver(context.Background(), events.Event{ID: "evt_1", Type: events.EventTaskCreated, Source: "agent-1", Target: "system"})

	deliveries := reg.snapshot()
	if len(deliveries) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(deliveries))
	}
	if deliveries[0].Error == "" {
		t.Error("expected a recorded delivery error for an unreachable endpoint")
	}
	if deliveries[0].DeliveredAt != nil {
		t.Error("expected DeliveredAt to stay nil on failure")
	}
}

func TestDispatcher_FansOutConcurrentlyAcrossManyWebhooks(t *testing.T) {
	var mu sync.Mutex
	var concurrent, maxConcurrent int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		concurrent++
		if concurrent > maxConcurrent {
			maxConcurrent = concurrent
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		concurrent--
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var hooks []store.Webhook
	for i := 0; i < 10; i++ {
		hooks = append(hooks, store.Webhook{ID: idForIndex(i), URL: srv.URL, CreatedAt: 1})
	}
	reg := &fakeRegistry{webhooks: hooks}
	d := New(reg, clock.NewVirtual(100))

	start := time.Now()
	d.deliver(context.Background(), events.Event{ID: "evt_1", Type: events.EventTaskCreated, Source: "agent-1", Target: "system"})
	elapsed := time.Since(start)

	if len(reg.snapshot()) != 10 {
		t.Fatalf("got %d deliveries, want 10", len(reg.snapshot()))
	}
	if maxConcurrent <= 1 {
		t.Error("expected deliveries to overlap concurrently, ran serially")
	}
	if maxConcurrent > maxConcurrentDeliveries {
		t.Errorf("observed concurrency %d exceeds cap %d", maxConcurrent, maxConcurrentDeliveries)
	}
	// Ten 20ms deliveries capped at 8-way concurrency take two waves,
	// well under the ~200ms a fully serial run would need.
	if elapsed > 150*time.Millisecond {
		t.Errorf("delivery took %v, expected well under fully-serial time", elapsed)
	}
}

func idForIndex(i int) string {
	return string(rune('a' + i))
}
