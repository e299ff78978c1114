package alertqueue

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid checks if the status is one of the permitted values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status can never transition again.
// A new work cycle for the same item creates a fresh row instead.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Item is one unit of scheduled price-check work. The (ItemID, WorkDate)
// pair is the natural key: at most one row exists per pair at any time.
type Item struct {
	ItemID    uuid.UUID `json:"item_id"`
	WorkDate  time.Time `json:"work_date"`
	Status    Status    `json:"status"`
	Attempts  int16     `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildReport summarizes one builder run.
type BuildReport struct {
	// Considered is the number of distinct subscribed items fetched from
	// the registry.
	Considered int `json:"considered"`

	// Queued is the number of rows actually inserted, excluding pairs
	// that already existed.
	Queued int64 `json:"queued"`

	// Expired is the number of stale pending rows transitioned to failed.
	Expired int64 `json:"expired"`

	// Date is the UTC work date the run scheduled for.
	Date time.Time `json:"date"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// DateOf truncates t to its UTC calendar date. All work dates are stored
// and compared at day granularity.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
