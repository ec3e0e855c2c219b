package draftstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = domain.DraftKey{LocationID: "loc-1", SessionID: "sess-1"}

func block(start, end int, ids ...string) domain.AssignmentBlock {
	return domain.AssignmentBlock{DayKey: "2024-03-04", StartIndex: start, EndIndex: end, EntityIDs: ids, Label: "Work"}
}

func newRedisStore(t *testing.T, ttl time.Duration, limit int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl, limit), mr
}

func stores(t *testing.T) map[string]domain.DraftStore {
	rs, _ := newRedisStore(t, time.Hour, 3)
	return map[string]domain.DraftStore{
		"memory": NewMemoryStore(3),
		"redis":  rs,
	}
}

func TestDraftStore_LoadUnknownIsEmpty(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			d, err := store.Load(context.Background(), testKey)
			require.NoError(t, err)
			assert.Empty(t, d.Blocks)
			assert.Equal(t, 0, d.Version)
			assert.Equal(t, 0, d.UndoDepth)
		})
	}
}

func TestDraftStore_SaveAndUndo(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
			require.NoError(t, err)
			assert.Equal(t, 1, first.Version)
			assert.Equal(t, 1, first.UndoDepth)

			second, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 4, "e1")}, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, second.Version)

			loaded, err := store.Load(ctx, testKey)
			require.NoError(t, err)
			assert.Equal(t, []domain.AssignmentBlock{block(0, 4, "e1")}, loaded.Blocks)
			assert.Equal(t, 2, loaded.UndoDepth)

			undone, err := store.Undo(ctx, testKey)
			require.NoError(t, err)
			assert.Equal(t, 3, undone.Version)
			assert.Equal(t, []domain.AssignmentBlock{block(0, 2, "e1")}, undone.Blocks)
			assert.Equal(t, 1, undone.UndoDepth)

			undone, err = store.Undo(ctx, testKey)
			require.NoError(t, err)
			assert.Equal(t, 4, undone.Version)
			assert.Empty(t, undone.Blocks)

			_, err = store.Undo(ctx, testKey)
			assert.ErrorIs(t, err, domain.ErrNothingToUndo)
		})
	}
}

func TestDraftStore_HistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var last domain.Draft
			for i := 1; i <= 6; i++ {
				var err error
				last, err = store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, i, "e1")}, 0)
				require.NoError(t, err)
			}
			assert.Equal(t, 6, last.Version)
			assert.Equal(t, 3, last.UndoDepth)

			for range 3 {
				_, err := store.Undo(ctx, testKey)
				require.NoError(t, err)
			}
			d, err := store.Load(ctx, testKey)
			require.NoError(t, err)
			assert.Equal(t, 9, d.Version)
			assert.Equal(t, []domain.AssignmentBlock{block(0, 3, "e1")}, d.Blocks)

			_, err = store.Undo(ctx, testKey)
			assert.ErrorIs(t, err, domain.ErrNothingToUndo)
		})
	}
}

func TestDraftStore_ExpectedVersion(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 1)
			assert.ErrorIs(t, err, domain.ErrVersionMismatch)

			first, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
			require.NoError(t, err)
			second, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 4, "e1")}, first.Version)
			require.NoError(t, err)
			assert.Equal(t, 2, second.Version)

			_, err = store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 5, "e1")}, first.Version)
			assert.ErrorIs(t, err, domain.ErrVersionMismatch)

			d, err := store.Load(ctx, testKey)
			require.NoError(t, err)
			assert.Equal(t, 2, d.Version)
			assert.Equal(t, []domain.AssignmentBlock{block(0, 4, "e1")}, d.Blocks)
		})
	}
}

func TestDraftStore_VersionsNeverRepeat(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
			require.NoError(t, err)
			painted, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 4, "e1")}, 0)
			require.NoError(t, err)

			undone, err := store.Undo(ctx, testKey)
			require.NoError(t, err)
			assert.Greater(t, undone.Version, painted.Version)

			// A client still holding the version seen before the undo.
			_, err = store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 6, "e1")}, painted.Version)
			assert.ErrorIs(t, err, domain.ErrVersionMismatch)

			require.NoError(t, store.Clear(ctx, testKey))
			cleared, err := store.Load(ctx, testKey)
			require.NoError(t, err)
			assert.Greater(t, cleared.Version, undone.Version)
			assert.Empty(t, cleared.Blocks)

			_, err = store.Save(ctx, testKey, nil, undone.Version)
			assert.ErrorIs(t, err, domain.ErrVersionMismatch)
		})
	}
}

func TestDraftStore_ClearAndKeyValidation(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
			require.NoError(t, err)
			require.NoError(t, store.Clear(ctx, testKey))

			d, err := store.Load(ctx, testKey)
			require.NoError(t, err)
			assert.Empty(t, d.Blocks)

			_, err = store.Undo(ctx, testKey)
			assert.ErrorIs(t, err, domain.ErrNothingToUndo)

			_, err = store.Save(ctx, domain.DraftKey{LocationID: "loc-1"}, nil, 0)
			assert.ErrorIs(t, err, domain.ErrInvalidDraftKey)
		})
	}
}

func TestDraftStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	other := domain.DraftKey{LocationID: "loc-1", SessionID: "sess-2"}
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
			require.NoError(t, err)

			d, err := store.Load(ctx, other)
			require.NoError(t, err)
			assert.Empty(t, d.Blocks)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore(DefaultHistoryLimit)
	ctx := context.Background()

	blocks := []domain.AssignmentBlock{block(0, 2, "e1")}
	_, err := store.Save(ctx, testKey, blocks, 0)
	require.NoError(t, err)
	blocks[0].EntityIDs[0] = "mutated"

	d, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, d.Blocks[0].EntityIDs)
}

func TestMemoryStore_ZeroLimitKeepsNoHistory(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	d, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, d.UndoDepth)

	_, err = store.Undo(ctx, testKey)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestRedisStore_DraftsExpire(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute, 3)
	ctx := context.Background()

	_, err := store.Save(ctx, testKey, []domain.AssignmentBlock{block(0, 2, "e1")}, 0)
	require.NoError(t, err)
	assert.True(t, mr.Exists("shiftgrid:draft:loc-1:sess-1"))

	mr.FastForward(2 * time.Minute)

	d, err := store.Load(ctx, testKey)
	require.NoError(t, err)
	assert.Empty(t, d.Blocks)
	assert.Equal(t, 0, d.UndoDepth)
}

func TestRedisStore_Ping(t *testing.T) {
	store, _ := newRedisStore(t, 0, 3)
	assert.NoError(t, store.Ping(context.Background()))
}
