// Package memory provides an in-memory blueprint store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/villas/pkg/store"
)

// Store keeps records in a map. Records are copied on the way in and out.
type Store struct {
	mu      sync.RWMutex
	records map[string]*store.Record
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*store.Record), now: time.Now}
}

func (s *Store) Save(ctx context.Context, r *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *store.Record
	if r != nil && r.ID != "" {
		existing = s.records[r.ID]
	}
	if err := store.Prepare(r, existing, s.now()); err != nil {
		return err
	}
	s.records[r.ID] = r.Clone()
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, store.NotFound(id)
	}
	return r.Clone(), nil
}

func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	store.Sort(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return store.NotFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
