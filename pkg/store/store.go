// Package store persists named blueprints.
//
// The [Store] interface has implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - file: One JSON file per record, for the CLI
//   - redis: JSON values plus an ID set, for multi-instance servers
//   - mongo: One document per record
//
// # Usage
//
//	s, err := file.NewStore("")  // Uses ~/.local/share/villas/blueprints/
//	rec := &store.Record{Blueprint: bp}
//	if err := s.Save(ctx, rec); err != nil {
//	    return err
//	}
//	fmt.Println(rec.ID)  // assigned on first save
//
//	rec, err = s.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // no such record
//	}
package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/errors"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "record not found")

// NotFound returns an error wrapping ErrNotFound for id.
func NotFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "blueprint %s", id)
}

// Record is a stored blueprint.
type Record struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Blueprint *blueprint.Blueprint `json:"blueprint"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Blueprint = r.Blueprint.Clone()
	return &out
}

// Store is the interface for blueprint storage backends.
type Store interface {
	// Save creates or replaces a record. It assigns an ID when r.ID is empty,
	// keeps the original CreatedAt of an existing record and sets UpdatedAt.
	// r is updated in place.
	Save(ctx context.Context, r *Record) error

	// Get returns the record with the given ID, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records ordered by CreatedAt, then ID.
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a record. Deleting a missing record returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Prepare validates r and fills in its ID, name and timestamps before a save.
// existing is the stored record with the same ID, or nil. Backends call it
// inside Save. Timestamps are UTC with millisecond precision so that every
// backend round-trips them exactly.
func Prepare(r *Record, existing *Record, now time.Time) error {
	if r == nil || r.Blueprint == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record has no blueprint")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := errors.ValidateID(r.ID); err != nil {
		return err
	}
	if r.Name == "" {
		r.Name = r.Blueprint.Name
	}
	if r.Name != "" {
		if err := errors.ValidateName(r.Name); err != nil {
			return err
		}
	}
	now = now.UTC().Truncate(time.Millisecond)
	if existing != nil {
		r.CreatedAt = existing.CreatedAt
	} else {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// Sort orders records by CreatedAt, then ID.
func Sort(records []*Record) {
	slices.SortFunc(records, func(a, b *Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
