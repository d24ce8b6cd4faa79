// Package webhooks is a thin, generic HTTP delivery sink layered over
// the event bus: it never blocks a writer and carries no authority of
// its own, matching the teacher's per-channel notification sinks
// (discord/slack/email) generalized to a single outbound webhook shape.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scrumhq/scrum/internal/clock"
	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/idgen"
	"github.com/scrumhq/scrum/internal/store"
)

// maxConcurrentDeliveries bounds how many webhook POSTs run at once for
// a single event, so one registration with many slow sinks can't stall
// delivery to the rest.
const maxConcurrentDeliveries = 8

// registry is the read-only slice of webhooks the Dispatcher fans an
// event out to.
type registry interface {
	ListWebhooks(ctx context.Context) ([]store.Webhook, error)
	RecordWebhookDelivery(ctx context.Context, d store.WebhookDelivery) error
}

// Dispatcher subscribes to the event bus and POSTs each matching event
// to every registered webhook whose EventTypes (empty meaning "all")
// includes the event's type. One delivery attempt per event, no retry
// queue: failures are recorded for audit and the dispatcher moves on,
// so a dead webhook endpoint never backs up event delivery.
type Dispatcher struct {
	store  registry
	clock  clock.Clock
	client *http.Client
}

// New returns a Dispatcher bound to store.
func New(s registry, c clock.Clock) *Dispatcher {
	return &Dispatcher{
		store:  s,
		clock:  c,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Run subscribes to bus and delivers events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, bus *events.Bus) {
	ch := bus.Subscribe("all", nil)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev events.Event) {
	hooks, err := d.store.ListWebhooks(ctx)
	if err != nil {
		log.Printf("[WEBHOOKS] list webhooks: %v", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDeliveries)
	for _, h := range hooks {
		if !matches(h, ev.Type) {
			continue
		}
		h := h
		g.Go(func() error {
			d.post(gctx, h, ev)
			return nil
		})
	}
	g.Wait()
}

func matches(h store.Webhook, t events.EventType) bool {
	if len(h.EventTypes) == 0 {
		return true
	}
	for _, et := range h.EventTypes {
		if et == string(t) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) post(ctx context.Context, h store.Webhook, ev events.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WEBHOOKS] marshal event: %v", err)
		return
	}

	delivery := store.WebhookDelivery{
		ID:        idgen.New("whd"),
		WebhookID: h.ID,
		EventType: string(ev.Type),
		Attempt:   1,
		CreatedAt: d.clock.NowMillis(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		delivery.Error = fmt.Sprintf("build request: %v", err)
		d.record(ctx, delivery)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		delivery.Error = err.Error()
		d.record(ctx, delivery)
		return
	}
	defer resp.Body.Close()

	delivery.StatusCode = resp.StatusCode
	deliveredAt := d.clock.NowMillis()
	delivery.DeliveredAt = &deliveredAt
	d.record(ctx, delivery)
}

func (d *Dispatcher) record(ctx context.Context, delivery store.WebhookDelivery) {
	if err := d.store.RecordWebhookDelivery(ctx, delivery); err != nil {
		log.Printf("[WEBHOOKS] record delivery: %v", err)
	}
}
