package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBroadcastFanOut(t *testing.T) {
	hub := NewHub()

	const n = 10
	subs := make([]*Subscriber, n)
	for i := range subs {
		subs[i] = hub.Subscribe()
	}
	if got := hub.SubscriberCount(); got != n {
		t.Fatalf("SubscriberCount = %d, want %d", got, n)
	}

	event := NewEvent(KindReload)
	hub.Broadcast(event)

	for i, sub := range subs {
		select {
		case got := <-sub.Events():
			if got.Kind != KindReload {
				t.Errorf("subscriber %d got kind %q, want %q", i, got.Kind, KindReload)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
		// Exactly one occurrence: no duplicates queued.
		select {
		case extra := <-sub.Events():
			t.Errorf("subscriber %d got duplicate event %+v", i, extra)
		default:
		}
	}

	for _, sub := range subs {
		hub.Unsubscribe(sub)
	}
	if got := hub.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount after unsubscribe = %d, want 0", got)
	}
}

func TestBroadcastOrderPerSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	for i := int64(0); i < 5; i++ {
		hub.Broadcast(Event{Kind: KindReload, T: i})
	}
	for i := int64(0); i < 5; i++ {
		got := <-sub.Events()
		if got.T != i {
			t.Fatalf("event %d arrived out of order: T=%d", i, got.T)
		}
	}
}

func TestSlowSubscriberDropsNotBlocks(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()
	defer hub.Unsubscribe(slow)

	done := make(chan struct{})
	go func() {
		// More events than the buffer holds; Broadcast must not stall.
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Broadcast(NewEvent(KindReload))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a slow subscriber")
	}

	received := 0
	for {
		select {
		case <-slow.Events():
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Errorf("slow subscriber buffered %d events, want %d", received, subscriberBuffer)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub) // second call is a no-op

	if _, open := <-sub.Events(); open {
		t.Error("channel still open after unsubscribe")
	}
}

func TestDisconnectDuringBroadcast(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(NewEvent(KindReload))
			}
		}
	}()

	// Subscribers churn concurrently with broadcasting; nothing may panic
	// and no event may arrive after Unsubscribe returns.
	for i := 0; i < 200; i++ {
		sub := hub.Subscribe()
		hub.Unsubscribe(sub)
		for range sub.Events() {
			// drain whatever landed before the disconnect completed
		}
	}

	close(stop)
	wg.Wait()
}

func TestNotifierStatsChanged(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	notifier := NewNotifier(hub, nil)
	notifier.StatsChanged(context.Background())

	select {
	case got := <-sub.Events():
		if got.Kind != KindReload {
			t.Errorf("kind = %q, want %q", got.Kind, KindReload)
		}
		if got.T == 0 {
			t.Error("event timestamp missing")
		}
	default:
		t.Fatal("no event broadcast")
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (p *recordingPublisher) PublishStatsChanged(_ context.Context, unix int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, unix)
	return p.err
}

func TestNotifierMirrorsToPublisher(t *testing.T) {
	hub := NewHub()
	pub := &recordingPublisher{}
	notifier := NewNotifier(hub, pub)

	notifier.StatsChanged(context.Background())
	if len(pub.calls) != 1 {
		t.Fatalf("publisher called %d times, want 1", len(pub.calls))
	}

	// Publisher failures are swallowed: the mutation already committed.
	pub.err = context.DeadlineExceeded
	notifier.StatsChanged(context.Background())
	if len(pub.calls) != 2 {
		t.Fatalf("publisher called %d times, want 2", len(pub.calls))
	}
}
