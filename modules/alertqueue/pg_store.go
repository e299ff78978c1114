package alertqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL implementation of Store and WorkerStore.
// Idempotent insertion relies on the (item_id, work_date) primary key and
// ON CONFLICT DO NOTHING rather than read-then-write locking, which keeps
// concurrent builder runs safe without coordination.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore over an established connection pool.
func NewPGStore(db *pgxpool.Pool) (*PGStore, error) {
	if db == nil {
		return nil, ErrStoreNil
	}
	return &PGStore{db: db}, nil
}

// DeleteCompleted implements Store.
func (s *PGStore) DeleteCompleted(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM price_check_queue WHERE status = 'completed'`)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// ExpireStalePending implements Store. The update is a single statement,
// so a row is never observable in an intermediate state.
func (s *PGStore) ExpireStalePending(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE price_check_queue
		 SET status = 'failed'
		 WHERE status = 'pending' AND work_date < $1`,
		DateOf(asOf))
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// InsertMissing implements Store. The whole batch is one INSERT over an
// unnested id array; rows whose natural key already exists are silently
// skipped and keep their status and attempts.
func (s *PGStore) InsertMissing(ctx context.Context, itemIDs []uuid.UUID, workDate time.Time) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO price_check_queue (item_id, work_date, status, attempts)
		 SELECT DISTINCT id, $2::date, 'pending', 0
		 FROM unnest($1::uuid[]) AS id
		 ON CONFLICT (item_id, work_date) DO NOTHING`,
		itemIDs, DateOf(workDate))
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// ClaimPending implements WorkerStore.
func (s *PGStore) ClaimPending(ctx context.Context, workDate time.Time, limit int) ([]Item, error) {
	rows, err := s.db.Query(ctx,
		`SELECT item_id, work_date, status, attempts, created_at
		 FROM price_check_queue
		 WHERE status = 'pending' AND work_date = $1
		 ORDER BY created_at
		 LIMIT $2`,
		DateOf(workDate), limit)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		var it Item
		err := row.Scan(&it.ItemID, &it.WorkDate, &it.Status, &it.Attempts, &it.CreatedAt)
		return it, err
	})
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return items, nil
}

// MarkCompleted implements WorkerStore.
func (s *PGStore) MarkCompleted(ctx context.Context, itemID uuid.UUID, workDate time.Time) error {
	return s.transition(ctx, itemID, workDate, StatusCompleted)
}

// MarkFailed implements WorkerStore.
func (s *PGStore) MarkFailed(ctx context.Context, itemID uuid.UUID, workDate time.Time) error {
	return s.transition(ctx, itemID, workDate, StatusFailed)
}

// transition applies the pending-only guard in the WHERE clause, so a row
// is finalized exactly once even when two workers observed it.
func (s *PGStore) transition(ctx context.Context, itemID uuid.UUID, workDate time.Time, to Status) error {
	if !to.Terminal() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	day := DateOf(workDate)
	tag, err := s.db.Exec(ctx,
		`UPDATE price_check_queue
		 SET status = $3, attempts = attempts + 1
		 WHERE item_id = $1 AND work_date = $2 AND status = 'pending'`,
		itemID, day, to)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing matched: distinguish a missing row from a terminal one.
	var status Status
	err = s.db.QueryRow(ctx,
		`SELECT status FROM price_check_queue WHERE item_id = $1 AND work_date = $2`,
		itemID, day).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: status is %q", ErrNotPending, status)
}

// PGRegistry reads the alert-registry tables. The registry itself is owned
// by the subscription side of the product; the queue only consumes the
// distinct set of actively watched items.
type PGRegistry struct {
	db *pgxpool.Pool
}

// NewPGRegistry creates a PGRegistry over an established connection pool.
func NewPGRegistry(db *pgxpool.Pool) (*PGRegistry, error) {
	if db == nil {
		return nil, ErrRegistryNil
	}
	return &PGRegistry{db: db}, nil
}

// DistinctSubscribedItems implements Registry.
func (r *PGRegistry) DistinctSubscribedItems(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT item_id FROM price_alerts WHERE active`)
	if err != nil {
		return nil, errors.Join(ErrRegistryUnavailable, err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, errors.Join(ErrRegistryUnavailable, err)
	}
	return ids, nil
}
