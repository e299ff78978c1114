package alertqueue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type itemKey struct {
	itemID uuid.UUID
	day    string
}

func keyOf(itemID uuid.UUID, workDate time.Time) itemKey {
	return itemKey{itemID: itemID, day: DateOf(workDate).Format(time.DateOnly)}
}

// MemoryStore implements Store and WorkerStore in memory for tests and
// local development. The mutex plays the role of the database's natural-key
// constraint: insertion of an existing pair is a no-op, never a duplicate.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[itemKey]*Item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[itemKey]*Item)}
}

// DeleteCompleted implements Store.
func (ms *MemoryStore) DeleteCompleted(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for k, it := range ms.items {
		if it.Status == StatusCompleted {
			delete(ms.items, k)
		}
	}
	return nil
}

// ExpireStalePending implements Store.
func (ms *MemoryStore) ExpireStalePending(ctx context.Context, asOf time.Time) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	day := DateOf(asOf)
	var n int64
	for _, it := range ms.items {
		if it.Status == StatusPending && it.WorkDate.Before(day) {
			it.Status = StatusFailed
			n++
		}
	}
	return n, nil
}

// InsertMissing implements Store.
func (ms *MemoryStore) InsertMissing(ctx context.Context, itemIDs []uuid.UUID, workDate time.Time) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	day := DateOf(workDate)
	var n int64
	for _, id := range itemIDs {
		k := keyOf(id, day)
		if _, exists := ms.items[k]; exists {
			continue
		}
		ms.items[k] = &Item{
			ItemID:    id,
			WorkDate:  day,
			Status:    StatusPending,
			Attempts:  0,
			CreatedAt: time.Now().UTC(),
		}
		n++
	}
	return n, nil
}

// ClaimPending implements WorkerStore.
func (ms *MemoryStore) ClaimPending(ctx context.Context, workDate time.Time, limit int) ([]Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	day := DateOf(workDate)
	var items []Item
	for _, it := range ms.items {
		if it.Status == StatusPending && it.WorkDate.Equal(day) {
			items = append(items, *it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// MarkCompleted implements WorkerStore.
func (ms *MemoryStore) MarkCompleted(ctx context.Context, itemID uuid.UUID, workDate time.Time) error {
	return ms.transition(itemID, workDate, StatusCompleted)
}

// MarkFailed implements WorkerStore.
func (ms *MemoryStore) MarkFailed(ctx context.Context, itemID uuid.UUID, workDate time.Time) error {
	return ms.transition(itemID, workDate, StatusFailed)
}

func (ms *MemoryStore) transition(itemID uuid.UUID, workDate time.Time, to Status) error {
	if !to.Terminal() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	it, ok := ms.items[keyOf(itemID, workDate)]
	if !ok {
		return ErrItemNotFound
	}
	if it.Status != StatusPending {
		return fmt.Errorf("%w: status is %q", ErrNotPending, it.Status)
	}
	it.Status = to
	it.Attempts++
	return nil
}

// Item returns a copy of the row for the given natural key, for tests.
func (ms *MemoryStore) Item(itemID uuid.UUID, workDate time.Time) (Item, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	it, ok := ms.items[keyOf(itemID, workDate)]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Len returns the total number of rows, for tests.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}

// MemoryRegistry implements Registry in memory. Subscriptions may repeat an
// item id; DistinctSubscribedItems deduplicates them like the SQL view does.
type MemoryRegistry struct {
	mu            sync.RWMutex
	subscriptions []uuid.UUID
}

// NewMemoryRegistry creates a registry seeded with the given subscriptions.
func NewMemoryRegistry(subscriptions ...uuid.UUID) *MemoryRegistry {
	return &MemoryRegistry{subscriptions: subscriptions}
}

// Subscribe adds a subscription for the item.
func (mr *MemoryRegistry) Subscribe(itemID uuid.UUID) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.subscriptions = append(mr.subscriptions, itemID)
}

// Unsubscribe removes every subscription for the item.
func (mr *MemoryRegistry) Unsubscribe(itemID uuid.UUID) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	kept := mr.subscriptions[:0]
	for _, id := range mr.subscriptions {
		if id != itemID {
			kept = append(kept, id)
		}
	}
	mr.subscriptions = kept
}

// DistinctSubscribedItems implements Registry.
func (mr *MemoryRegistry) DistinctSubscribedItems(ctx context.Context) ([]uuid.UUID, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{}, len(mr.subscriptions))
	ids := make([]uuid.UUID, 0, len(mr.subscriptions))
	for _, id := range mr.subscriptions {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
