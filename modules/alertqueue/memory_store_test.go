package alertqueue_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealwatch/dealwatch/modules/alertqueue"
)

func TestMemoryStore_InsertMissing(t *testing.T) {
	t.Parallel()

	t.Run("double insert yields same row count", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

		n, err := store.InsertMissing(ctx, ids, day1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = store.InsertMissing(ctx, ids, day1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("overlapping sets only add the new ids", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		shared := uuid.New()

		n, err := store.InsertMissing(ctx, []uuid.UUID{shared}, day1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = store.InsertMissing(ctx, []uuid.UUID{shared, uuid.New()}, day1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("existing row keeps status and attempts", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		id := uuid.New()

		_, err := store.InsertMissing(ctx, []uuid.UUID{id}, day1)
		require.NoError(t, err)
		require.NoError(t, store.MarkFailed(ctx, id, day1))

		_, err = store.InsertMissing(ctx, []uuid.UUID{id}, day1)
		require.NoError(t, err)

		row, ok := store.Item(id, day1)
		require.True(t, ok)
		assert.Equal(t, alertqueue.StatusFailed, row.Status)
		assert.Equal(t, int16(1), row.Attempts)
	})

	t.Run("same item on a later date creates a fresh row", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		id := uuid.New()

		_, err := store.InsertMissing(ctx, []uuid.UUID{id}, day1)
		require.NoError(t, err)
		n, err := store.InsertMissing(ctx, []uuid.UUID{id}, day2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, 2, store.Len())
	})
}

func TestMemoryStore_ExpireStalePending(t *testing.T) {
	t.Parallel()

	t.Run("only rows before the cutoff expire", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		stale := uuid.New()
		fresh := uuid.New()

		_, err := store.InsertMissing(ctx, []uuid.UUID{stale}, day1)
		require.NoError(t, err)
		_, err = store.InsertMissing(ctx, []uuid.UUID{fresh}, day2)
		require.NoError(t, err)

		n, err := store.ExpireStalePending(ctx, day2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		staleRow, _ := store.Item(stale, day1)
		assert.Equal(t, alertqueue.StatusFailed, staleRow.Status)
		freshRow, _ := store.Item(fresh, day2)
		assert.Equal(t, alertqueue.StatusPending, freshRow.Status)
	})

	t.Run("terminal rows are not touched", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		id := uuid.New()

		_, err := store.InsertMissing(ctx, []uuid.UUID{id}, day1)
		require.NoError(t, err)
		require.NoError(t, store.MarkCompleted(ctx, id, day1))

		n, err := store.ExpireStalePending(ctx, day2)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		row, _ := store.Item(id, day1)
		assert.Equal(t, alertqueue.StatusCompleted, row.Status)
	})
}

func TestMemoryStore_DeleteCompleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := alertqueue.NewMemoryStore()
	done := uuid.New()
	pending := uuid.New()
	failed := uuid.New()

	_, err := store.InsertMissing(ctx, []uuid.UUID{done, pending, failed}, day1)
	require.NoError(t, err)
	require.NoError(t, store.MarkCompleted(ctx, done, day1))
	require.NoError(t, store.MarkFailed(ctx, failed, day1))

	require.NoError(t, store.DeleteCompleted(ctx))

	_, ok := store.Item(done, day1)
	assert.False(t, ok)

	pendingRow, ok := store.Item(pending, day1)
	require.True(t, ok)
	assert.Equal(t, alertqueue.StatusPending, pendingRow.Status)
	assert.Equal(t, int16(0), pendingRow.Attempts)

	failedRow, ok := store.Item(failed, day1)
	require.True(t, ok)
	assert.Equal(t, alertqueue.StatusFailed, failedRow.Status)

	// Deleting again with nothing completed is not an error.
	require.NoError(t, store.DeleteCompleted(ctx))
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_WorkerTransitions(t *testing.T) {
	t.Parallel()

	t.Run("claim returns only pending rows of the day", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		a := uuid.New()
		b := uuid.New()

		_, err := store.InsertMissing(ctx, []uuid.UUID{a, b}, day1)
		require.NoError(t, err)
		_, err = store.InsertMissing(ctx, []uuid.UUID{uuid.New()}, day2)
		require.NoError(t, err)
		require.NoError(t, store.MarkCompleted(ctx, a, day1))

		items, err := store.ClaimPending(ctx, day1, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, b, items[0].ItemID)
	})

	t.Run("claim respects the limit", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		_, err := store.InsertMissing(ctx, []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}, day1)
		require.NoError(t, err)

		items, err := store.ClaimPending(ctx, day1, 2)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("terminal rows are never reopened", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := alertqueue.NewMemoryStore()
		id := uuid.New()

		_, err := store.InsertMissing(ctx, []uuid.UUID{id}, day1)
		require.NoError(t, err)
		require.NoError(t, store.MarkFailed(ctx, id, day1))

		err = store.MarkCompleted(ctx, id, day1)
		assert.ErrorIs(t, err, alertqueue.ErrNotPending)

		row, _ := store.Item(id, day1)
		assert.Equal(t, alertqueue.StatusFailed, row.Status)
		assert.Equal(t, int16(1), row.Attempts)
	})

	t.Run("missing row is reported as not found", func(t *testing.T) {
		t.Parallel()

		err := alertqueue.NewMemoryStore().MarkCompleted(context.Background(), uuid.New(), day1)
		assert.ErrorIs(t, err, alertqueue.ErrItemNotFound)
	})
}

func TestMemoryRegistry_DistinctSubscribedItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := uuid.New()
	b := uuid.New()

	registry := alertqueue.NewMemoryRegistry(a, b)
	registry.Subscribe(a) // second watcher for the same item
	registry.Subscribe(a)

	ids, err := registry.DistinctSubscribedItems(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)

	registry.Unsubscribe(a)
	ids, err = registry.DistinctSubscribedItems(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b}, ids)
}

func TestDateOf(t *testing.T) {
	t.Parallel()

	// 23:45 on Aug 30 at UTC+5 is still Aug 30 in UTC.
	local := time.Date(2026, 8, 30, 23, 45, 1, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, day1, alertqueue.DateOf(local))
	assert.Equal(t, day1, alertqueue.DateOf(day1.Add(13*time.Hour)))
	// 03:00 on Aug 31 at UTC+5 is still Aug 30 in UTC.
	early := time.Date(2026, 8, 31, 3, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, day1, alertqueue.DateOf(early))
}
