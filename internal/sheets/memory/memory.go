// Package memory provides an in-memory ReportWriter used by tests.
package memory

import (
	"context"
	"sync"

	ports "scoreboard/internal/sheets"
)

type Store struct {
	mu       sync.Mutex
	snapshot []ports.ReportRow
	writes   int
}

func New() *Store {
	return &Store{}
}

// WriteSnapshot replaces the stored snapshot.
func (s *Store) WriteSnapshot(_ context.Context, rows []ports.ReportRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = append([]ports.ReportRow(nil), rows...)
	s.writes++
	return nil
}

// Snapshot returns a copy of the last written snapshot.
func (s *Store) Snapshot() []ports.ReportRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.ReportRow(nil), s.snapshot...)
}

// Writes reports how many snapshots have been written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
