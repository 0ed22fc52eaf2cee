// Package bus provides the structured message channel between the detection
// core and companion surfaces. Delivery is fire-and-forget, at-most-once:
// there is no outbox, no acknowledgment and no retry. A companion surface
// that is absent or slow simply misses events.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// EventType identifies an outbound event.
type EventType string

// Outbound event types.
const (
	EventStateUpdate          EventType = "state_update"
	EventTransactionDetected  EventType = "transaction_detected"
	EventSubscriptionDetected EventType = "subscription_detected"
	EventCancellationDetected EventType = "cancellation_detected"
)

// Event is one outbound message to companion surfaces. Only the fields
// relevant to the event type are populated.
type Event struct {
	Timestamp time.Time                `json:"timestamp"`
	Type      EventType                `json:"type"`
	SessionID string                   `json:"session_id"`
	State     model.TrackerState       `json:"state,omitempty"`
	Site      *model.SiteIdentity      `json:"site,omitempty"`
	Analysis  *model.AnalysisResult    `json:"analysis,omitempty"`
	Record    *model.TransactionRecord `json:"record,omitempty"`
}

// Broadcaster delivers events to companion surfaces. Implementations must be
// best-effort; an error means the event was dropped, never that it will be
// retried.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

const subscriberBuffer = 64

// Bus is an in-process fan-out broadcaster. Subscribers receive events on
// buffered channels; events for a full or absent subscriber are dropped.
type Bus struct {
	subscribers map[int]chan Event
	next        int
	mu          sync.Mutex
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Broadcast fans the event out to all current subscribers without blocking.
// It never fails; the error return satisfies Broadcaster.
func (b *Bus) Broadcast(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			slog.Debug("dropping event for slow subscriber",
				"subscriber", id, "event_type", event.Type)
		}
	}
	return nil
}

// Subscribe registers a new subscriber and returns its channel along with a
// cancel function that must be called to release it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of attached subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
