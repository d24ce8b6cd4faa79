package events

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// broadcastTarget is the reserved subscriber target that receives every
// event regardless of the event's own Target, and the target every event
// with Target == broadcastTarget fans out to.
const broadcastTarget = "all"

// Backpressure tuning: a slow subscriber gets a few short chances to drain
// before its event is dropped rather than blocking the publisher.
const (
	MaxBackpressureRetries = 3
	BackpressureRetryDelay = 10 * time.Millisecond
)

// subscriberBuffer is the per-subscription channel depth. A subscriber that
// falls this far behind hits the backpressure path on the next publish.
const subscriberBuffer = 100

// Subscription is one listener's registration on the bus: a buffered
// delivery channel plus the target/type filter that selects what lands on
// it.
type Subscription struct {
	Ch     chan Event
	Types  []EventType
	Target string
}

// accepts reports whether an event of eventType should be delivered on this
// subscription. An empty filter accepts every type.
func (s *Subscription) accepts(eventType EventType) bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, t := range s.Types {
		if t == eventType {
			return true
		}
	}
	return false
}

// EventStore persists published events so a subscriber that was offline at
// publish time can still catch up via GetPendingEvents.
type EventStore interface {
	Save(event *Event) error
	GetPending(target string, types []EventType) ([]*Event, error)
	MarkDelivered(eventID string) error
}

// Bus fans published events out to every subscriber whose target and type
// filter match, with bounded retry-then-drop backpressure protecting the
// publisher from a stalled subscriber. It is the coordination engine's only
// notification path for intent, claim, evidence, and agent mutations, which
// do not otherwise appear in the changelog.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*Subscription
	store       EventStore
	dropped     uint64
}

// NewBus wires a Bus against an optional EventStore. A nil store disables
// persistence: Publish still fans out live, but GetPendingEvents and
// MarkDelivered become no-ops.
func NewBus(store EventStore) *Bus {
	return &Bus{
		subscribers: make(map[string][]*Subscription),
		store:       store,
	}
}

// Subscribe registers a listener for target and returns its delivery
// channel. types narrows which event types arrive; nil or empty means
// every type.
func (b *Bus) Subscribe(target string, types []EventType) <-chan Event {
	sub := &Subscription{
		Ch:     make(chan Event, subscriberBuffer),
		Types:  types,
		Target: target,
	}

	b.mu.Lock()
	b.subscribers[target] = append(b.subscribers[target], sub)
	b.mu.Unlock()

	return sub.Ch
}

// Unsubscribe removes the subscription backing ch for target and closes it.
// A no-op if the subscription was already removed.
func (b *Bus) Unsubscribe(target string, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[target]
	if !ok {
		return
	}
	for i, sub := range subs {
		if sub.Ch != ch {
			continue
		}
		close(sub.Ch)
		b.subscribers[target] = append(subs[:i], subs[i+1:]...)
		if len(b.subscribers[target]) == 0 {
			delete(b.subscribers, target)
		}
		return
	}
}

// Publish persists event (if a store is wired) and delivers it to every
// subscription whose target and type filter match: subscribers on
// event.Target, subscribers on broadcastTarget, or — when event.Target is
// itself broadcastTarget — every subscriber on the bus.
func (b *Bus) Publish(event *Event) {
	if b.store != nil {
		if err := b.store.Save(event); err != nil {
			log.Printf("events: persist failed type=%s target=%s id=%s: %v", event.Type, event.Target, event.ID, err)
		}
	}

	recipients := b.recipientsFor(event.Target)
	for _, sub := range recipients {
		if sub.accepts(event.Type) {
			b.deliver(sub, event)
		}
	}
}

func (b *Bus) recipientsFor(target string) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if target == broadcastTarget {
		var all []*Subscription
		for _, subs := range b.subscribers {
			all = append(all, subs...)
		}
		return all
	}

	var matched []*Subscription
	matched = append(matched, b.subscribers[target]...)
	matched = append(matched, b.subscribers[broadcastTarget]...)
	return matched
}

// deliver sends event on sub.Ch, retrying a bounded number of times with a
// short sleep if the channel is momentarily full, and dropping (with a
// logged count) if it never drains. When the bus has a store, the event
// remains recoverable via GetPendingEvents regardless of whether live
// delivery succeeds; without one, a dropped event is lost.
func (b *Bus) deliver(sub *Subscription, event *Event) {
	select {
	case sub.Ch <- *event:
		return
	default:
	}

	for attempt := 1; attempt <= MaxBackpressureRetries; attempt++ {
		time.Sleep(BackpressureRetryDelay)
		select {
		case sub.Ch <- *event:
			return
		default:
		}
	}

	dropped := atomic.AddUint64(&b.dropped, 1)
	log.Printf("events: dropped event after %d retries type=%s target=%s source=%s id=%s total_dropped=%d",
		MaxBackpressureRetries, event.Type, event.Target, event.Source, event.ID, dropped)
}

// GetPendingEvents returns target's undelivered events from the store, or
// nil if no store is wired.
func (b *Bus) GetPendingEvents(target string, types []EventType) ([]*Event, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.GetPending(target, types)
}

// MarkDelivered records eventID as delivered so a later GetPendingEvents
// call won't return it again. A no-op if no store is wired.
func (b *Bus) MarkDelivered(eventID string) error {
	if b.store == nil {
		return nil
	}
	return b.store.MarkDelivered(eventID)
}

// DroppedEventCount returns the running total of events dropped to
// backpressure across every subscriber.
func (b *Bus) DroppedEventCount() uint64 {
	return atomic.LoadUint64(&b.dropped)
}
