package alertqueue

import "errors"

// Common errors
var (
	// ErrStoreNil is returned when a nil queue store is provided
	ErrStoreNil = errors.New("queue store cannot be nil")

	// ErrRegistryNil is returned when a nil alert registry is provided
	ErrRegistryNil = errors.New("alert registry cannot be nil")

	// ErrStoreUnavailable is returned when the persistence layer is unreachable
	ErrStoreUnavailable = errors.New("queue store unavailable")

	// ErrRegistryUnavailable is returned when the alert registry cannot be read
	ErrRegistryUnavailable = errors.New("alert registry unavailable")

	// ErrPartialInsert is returned when the store rejected an insert batch
	// mid-way; a full re-run is the recovery path, idempotent by natural key
	ErrPartialInsert = errors.New("queue insert batch failed part-way")

	// ErrCleanup is returned when the housekeeping steps fail in strict mode
	ErrCleanup = errors.New("queue cleanup failed")

	// ErrInvalidStatus is returned when a status outside the permitted set
	// is encountered
	ErrInvalidStatus = errors.New("invalid queue item status")

	// ErrNotPending is returned when a worker transition targets a row that
	// is not in pending state; terminal rows are never resurrected
	ErrNotPending = errors.New("queue item is not pending")

	// ErrItemNotFound is returned when a worker transition targets a row
	// that does not exist
	ErrItemNotFound = errors.New("queue item not found")
)
