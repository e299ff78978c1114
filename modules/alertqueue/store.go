package alertqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence operations the builder depends on.
// Implementations must enforce uniqueness on the (item_id, work_date)
// natural key; that constraint, not application-side locking, is what makes
// InsertMissing safe under concurrent builder runs.
type Store interface {
	// DeleteCompleted removes all rows with status completed. It is always
	// safe: deleting nothing is not an error, and pending/failed rows are
	// never touched.
	DeleteCompleted(ctx context.Context) error

	// ExpireStalePending transitions every pending row with a work date
	// before asOf to failed, as one set operation. It returns the number
	// of rows affected.
	ExpireStalePending(ctx context.Context, asOf time.Time) (int64, error)

	// InsertMissing inserts a pending row with zero attempts for each id
	// that has no row for workDate yet. Existing (id, workDate) pairs are
	// left completely untouched. It returns the number of rows actually
	// inserted and is safe to call repeatedly with overlapping id sets.
	InsertMissing(ctx context.Context, itemIDs []uuid.UUID, workDate time.Time) (int64, error)
}

// Registry is the read-only view of the alert registry the builder consumes.
type Registry interface {
	// DistinctSubscribedItems returns the deduplicated set of item ids
	// that currently have at least one active price-alert subscription.
	// Order is unspecified.
	DistinctSubscribedItems(ctx context.Context) ([]uuid.UUID, error)
}

// WorkerStore defines the only transitions the external price-check worker
// is permitted to make. It must never modify item_id or work_date, and must
// never reopen a completed or failed row.
type WorkerStore interface {
	// ClaimPending returns up to limit pending rows for workDate in
	// creation order. Two workers may observe the same row; the
	// conditional transitions below guarantee it is finalized once.
	ClaimPending(ctx context.Context, workDate time.Time, limit int) ([]Item, error)

	// MarkCompleted transitions a pending row to completed and increments
	// its attempts counter. Returns ErrNotPending if the row is terminal.
	MarkCompleted(ctx context.Context, itemID uuid.UUID, workDate time.Time) error

	// MarkFailed transitions a pending row to failed and increments its
	// attempts counter. Returns ErrNotPending if the row is terminal.
	MarkFailed(ctx context.Context, itemID uuid.UUID, workDate time.Time) error
}
