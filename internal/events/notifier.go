package events

import (
	"context"
	"log/slog"
)

// Publisher mirrors change notifications to an external message bus for
// out-of-process consumers (the export worker). Implemented by amqp.Client.
type Publisher interface {
	PublishStatsChanged(ctx context.Context, unix int64) error
}

// Notifier is the single place mutations report changes to. It builds the
// event, fans it out through the hub and, when a publisher is configured,
// mirrors it to the bus. Delivery problems never propagate to the caller:
// the mutation has already committed.
type Notifier struct {
	hub       *Hub
	publisher Publisher
}

// NewNotifier creates a notifier. publisher may be nil.
func NewNotifier(hub *Hub, publisher Publisher) *Notifier {
	return &Notifier{hub: hub, publisher: publisher}
}

// StatsChanged broadcasts a reload signal to all connected viewers.
func (n *Notifier) StatsChanged(ctx context.Context) {
	event := NewEvent(KindReload)
	n.hub.Broadcast(event)

	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishStatsChanged(ctx, event.T); err != nil {
		slog.ErrorContext(ctx, "Failed to publish stats change", "error", err)
	}
}
