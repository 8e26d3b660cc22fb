package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"scoreboard/internal/events"
)

// handleEvents streams change notifications to a connected viewer. The
// stream carries a hello event on connect, reload events on every data
// change, and comment frames as keepalives so idle proxies keep the
// connection open.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	slog.InfoContext(r.Context(), "Viewer connected", "subscribers", s.hub.SubscriberCount())
	defer slog.InfoContext(r.Context(), "Viewer disconnected")

	if err := writeSSEEvent(w, events.NewEvent(events.KindHello)); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(s.keepAlive)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-sub.Events():
			if err := writeSSEEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w io.Writer, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
