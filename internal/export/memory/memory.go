// Package memory provides an in-memory snapshot writer for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"dons/internal/export"
)

type Store struct {
	mu    sync.Mutex
	items []export.Snapshot
}

var _ export.SnapshotWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteSnapshot stores the snapshot and returns a synthetic reference.
func (s *Store) WriteSnapshot(_ context.Context, snap export.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, snap)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Snapshots returns a copy of everything written so far.
func (s *Store) Snapshots() []export.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.Snapshot(nil), s.items...)
}
