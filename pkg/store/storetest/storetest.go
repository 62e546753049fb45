// Package storetest is a conformance suite for [store.Store] implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/store"
	"github.com/matzehuels/villas/pkg/villa"
)

// Blueprint returns a small valid blueprint named name.
func Blueprint(name string) *blueprint.Blueprint {
	return &blueprint.Blueprint{
		Name:   name,
		Width:  6,
		Height: 4,
		Rooms: []blueprint.RoomSpec{
			{Name: "hall", At: []int{1, 1}, Drawing: "D---\n----\n"},
		},
		Tiles: []villa.Feature{villa.StairAt(3, 2)},
	}
}

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("SaveAssignsIDAndTimestamps", func(t *testing.T) {
		s := open(t, newStore)
		rec := &store.Record{Blueprint: Blueprint("wing")}
		require.NoError(t, s.Save(context.Background(), rec))

		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "wing", rec.Name)
		assert.False(t, rec.CreatedAt.IsZero())
		assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		rec := &store.Record{ID: "wing-1", Name: "east wing", Blueprint: Blueprint("wing")}
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Get(ctx, "wing-1")
		require.NoError(t, err)
		assert.Equal(t, "east wing", got.Name)
		assert.Equal(t, rec.Blueprint, got.Blueprint)
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

		got.Blueprint.Rooms[0].Name = "changed"
		again, err := s.Get(ctx, "wing-1")
		require.NoError(t, err)
		assert.Equal(t, "hall", again.Blueprint.Rooms[0].Name)
	})

	t.Run("SaveKeepsCreatedAt", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		rec := &store.Record{ID: "wing-1", Blueprint: Blueprint("wing")}
		require.NoError(t, s.Save(ctx, rec))
		created := rec.CreatedAt

		time.Sleep(5 * time.Millisecond)
		update := &store.Record{ID: "wing-1", Blueprint: Blueprint("wing v2")}
		require.NoError(t, s.Save(ctx, update))
		assert.True(t, created.Equal(update.CreatedAt))
		assert.True(t, update.UpdatedAt.After(created))

		got, err := s.Get(ctx, "wing-1")
		require.NoError(t, err)
		assert.Equal(t, "wing v2", got.Blueprint.Name)
		assert.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ListOrder", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Save(ctx, &store.Record{ID: id, Blueprint: Blueprint(id)}))
			time.Sleep(2 * time.Millisecond)
		}

		records, err := s.List(ctx)
		require.NoError(t, err)
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := open(t, newStore)
		records, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, &store.Record{ID: "gone", Blueprint: Blueprint("gone")}))

		require.NoError(t, s.Delete(ctx, "gone"))
		_, err := s.Get(ctx, "gone")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "gone"), store.ErrNotFound)
	})

	t.Run("SaveValidates", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()
		assert.Error(t, s.Save(ctx, &store.Record{ID: "empty"}))
		assert.Error(t, s.Save(ctx, &store.Record{ID: "bad id!", Blueprint: Blueprint("x")}))
		assert.Error(t, s.Save(ctx, &store.Record{Name: "../etc", Blueprint: Blueprint("x")}))
	})
}

func open(t *testing.T, newStore func(t *testing.T) store.Store) store.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { s.Close() })
	return s
}
