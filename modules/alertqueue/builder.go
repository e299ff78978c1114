package alertqueue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Builder materializes the daily price-check queue. Each run is one logical
// unit: retire finished work, expire stale work, then insert today's missing
// rows. Every step is idempotent, so a run that fails at any point is
// recovered by re-running it in full.
type Builder struct {
	store          Store
	registry       Registry
	now            func() time.Time
	logger         *slog.Logger
	lenientCleanup bool
}

// NewBuilder creates a Builder over the given store and registry.
func NewBuilder(store Store, registry Registry, opts ...BuilderOption) (*Builder, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if registry == nil {
		return nil, ErrRegistryNil
	}

	options := &builderOptions{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Builder{
		store:          store,
		registry:       registry,
		now:            options.now,
		logger:         options.logger,
		lenientCleanup: options.lenientCleanup,
	}, nil
}

// Run executes one build cycle for the current UTC calendar date.
//
// Cleanup (delete completed, expire stale pending) runs before creation;
// the ordering is load-bearing, since creating today's rows on top of an
// unexpired prior-day backlog would leave stale pending rows behind. An
// empty registry is a valid state: the run succeeds with a zero report.
func (b *Builder) Run(ctx context.Context) (*BuildReport, error) {
	start := b.now()
	today := DateOf(start)
	runID := uuid.New()

	log := b.logger.With(
		slog.String("run_id", runID.String()),
		slog.Time("work_date", today),
	)
	log.InfoContext(ctx, "queue build started")

	expired, err := b.cleanup(ctx, today, log)
	if err != nil {
		return nil, err
	}

	items, err := b.registry.DistinctSubscribedItems(ctx)
	if err != nil {
		log.ErrorContext(ctx, "alert registry fetch failed",
			slog.Any("error", err),
			slog.Duration("elapsed", b.now().Sub(start)))
		return nil, errors.Join(ErrRegistryUnavailable, err)
	}

	report := &BuildReport{
		Considered: len(items),
		Expired:    expired,
		Date:       today,
	}

	if len(items) == 0 {
		report.Elapsed = b.now().Sub(start)
		log.InfoContext(ctx, "queue build finished, no active alerts",
			slog.Duration("elapsed", report.Elapsed))
		return report, nil
	}

	queued, err := b.store.InsertMissing(ctx, items, today)
	if err != nil {
		log.ErrorContext(ctx, "queue insert failed",
			slog.Any("error", err),
			slog.Duration("elapsed", b.now().Sub(start)))
		return nil, errors.Join(ErrPartialInsert, err)
	}

	report.Queued = queued
	report.Elapsed = b.now().Sub(start)

	log.InfoContext(ctx, "queue build finished",
		slog.Int("considered", report.Considered),
		slog.Int64("queued", report.Queued),
		slog.Int64("expired", report.Expired),
		slog.Duration("elapsed", report.Elapsed))

	return report, nil
}

// cleanup runs the housekeeping half of the cycle. In strict mode (the
// default) a failure aborts the run before any creation happens; with
// WithLenientCleanup the failure is logged and the run continues.
func (b *Builder) cleanup(ctx context.Context, today time.Time, log *slog.Logger) (int64, error) {
	if err := b.store.DeleteCompleted(ctx); err != nil {
		if !b.lenientCleanup {
			log.ErrorContext(ctx, "delete of completed rows failed", slog.Any("error", err))
			return 0, errors.Join(ErrCleanup, err)
		}
		log.WarnContext(ctx, "delete of completed rows failed, continuing", slog.Any("error", err))
	}

	expired, err := b.store.ExpireStalePending(ctx, today)
	if err != nil {
		if !b.lenientCleanup {
			log.ErrorContext(ctx, "expiry of stale pending rows failed", slog.Any("error", err))
			return 0, errors.Join(ErrCleanup, err)
		}
		log.WarnContext(ctx, "expiry of stale pending rows failed, continuing", slog.Any("error", err))
		return 0, nil
	}

	if expired > 0 {
		log.InfoContext(ctx, "expired stale pending rows", slog.Int64("count", expired))
	}
	return expired, nil
}
