package alertqueue

import (
	"log/slog"
	"time"
)

type builderOptions struct {
	now            func() time.Time
	logger         *slog.Logger
	lenientCleanup bool
}

// BuilderOption configures a Builder
type BuilderOption func(*builderOptions)

// WithLogger sets a custom logger for the builder
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(o *builderOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) BuilderOption {
	return func(o *builderOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLenientCleanup makes housekeeping failures (deleting completed rows,
// expiring stale pending rows) non-fatal: they are logged and the run
// proceeds to creation. The default is strict, where a cleanup failure
// aborts the run before any rows are created.
func WithLenientCleanup() BuilderOption {
	return func(o *builderOptions) {
		o.lenientCleanup = true
	}
}
