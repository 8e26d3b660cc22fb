// Package events implements the in-process fan-out hub that pushes change
// notifications to connected scoreboard viewers.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Event kinds delivered over the viewer stream.
const (
	KindHello  = "hello"
	KindReload = "reload"
)

// Event is the wire payload sent to viewers. It is a bare signal: clients
// re-fetch the page rather than receiving the changed data inline.
type Event struct {
	Kind string `json:"event"`
	T    int64  `json:"t"`
}

// NewEvent stamps an event with the current unix time.
func NewEvent(kind string) Event {
	return Event{Kind: kind, T: time.Now().Unix()}
}

// subscriberBuffer bounds each subscriber's delivery channel. A viewer that
// falls further behind than this has its events dropped, never queued
// without bound.
const subscriberBuffer = 16

// Subscriber is one connected viewer's delivery channel. It is created by
// Subscribe and must be released with Unsubscribe when the connection ends.
type Subscriber struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// Events returns the receive side of the subscriber's channel. It is closed
// by Unsubscribe.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// send performs a non-blocking delivery. A closed or full subscriber
// reports false; the channel can never be written after close.
func (s *Subscriber) send(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Hub fans events out to every subscribed viewer. The subscriber set is
// guarded by mu; delivery happens outside that lock so a slow consumer
// cannot stall registration or other consumers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new viewer and returns its delivery channel.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	slog.Debug("Viewer subscribed", "subscribers", count)
	return sub
}

// Unsubscribe removes a viewer and closes its channel. Calling it twice for
// the same subscriber is a no-op. Once it returns, no further events reach
// the subscriber even from broadcasts already in flight.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}
	sub.close()
	slog.Debug("Viewer unsubscribed", "subscribers", count)
}

// Broadcast delivers the event to every current subscriber, best-effort.
// The set is snapshotted under the lock; sends are non-blocking and a full
// or departed subscriber just misses the event.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	snapshot := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		snapshot = append(snapshot, sub)
	}
	h.mu.Unlock()

	dropped := 0
	for _, sub := range snapshot {
		if !sub.send(event) {
			dropped++
		}
	}
	if dropped > 0 {
		slog.Warn("Dropped event for slow viewers", "kind", event.Kind, "dropped", dropped)
	}
}

// SubscriberCount reports the number of connected viewers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
