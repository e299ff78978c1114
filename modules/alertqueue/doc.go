// Package alertqueue implements the daily price-alert processing queue: the
// batch job that decides which tracked items need an external price check
// today, materializes that work as durable queue rows, and maintains the
// queue's lifecycle.
//
// The package is organised around three contracts:
//
//   - Store       — durable queue rows keyed by (item_id, work_date)
//   - Registry    — read-only view of items with active alert subscriptions
//   - WorkerStore — the only transitions the external price-check worker may make
//
// The Builder runs once per UTC calendar day: it deletes completed rows,
// expires stale pending rows to failed, fetches the distinct subscribed
// items, and inserts the missing rows for today. Every step is idempotent;
// the natural-key uniqueness constraint is the sole mechanism preventing
// duplicate scheduling, so overlapping or repeated invocations are safe
// without locking.
//
// # Usage
//
//	store, _ := alertqueue.NewPGStore(pool)
//	registry, _ := alertqueue.NewPGRegistry(pool)
//	builder, _ := alertqueue.NewBuilder(store, registry)
//
//	r := chi.NewRouter()
//	r.Mount("/queue", alertqueue.Router(builder, logger))
//
// A cron-style scheduler calls POST /queue/build daily; POST /queue/rebuild
// is the manual recovery path with identical semantics. Re-running after a
// transient failure simply redoes the idempotent steps.
package alertqueue
