package repo

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cyclesched/internal/domain"
)

// Writer drains a proxy's pending-delta buffers into the runtime
// database on its own cadence. The scheduler core never blocks on
// storage: it appends rows to the buffer during state transitions and
// message processing, and Writer flushes them out of band — the same
// decoupling as orchestrator.pollLoop/worker.pollLoop, narrowed from
// "poll an external queue" to "drain an in-memory buffer".
type Writer struct {
	proxies *ProxyRepo
	jobs    *TaskJobRepo
	jobLogs *TaskJobLogRepo
	events  *TaskEventRepo

	buffer   *domain.DeltaBuffer
	interval time.Duration
	logger   *slog.Logger
}

// NewWriter returns a Writer draining buffer into pool's tables every
// interval.
func NewWriter(pool *pgxpool.Pool, buffer *domain.DeltaBuffer, interval time.Duration, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Writer{
		proxies:  NewProxyRepo(pool),
		jobs:     NewTaskJobRepo(pool),
		jobLogs:  NewTaskJobLogRepo(pool),
		events:   NewTaskEventRepo(pool),
		buffer:   buffer,
		interval: interval,
		logger:   logger,
	}
}

// Run drains the buffer every tick until ctx is cancelled, flushing
// once more before returning so a clean shutdown loses no rows.
func (w *Writer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(context.Background())
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// flush drains the buffer once, logging but not retrying per-row
// failures — a dropped delta row is a stale read, not data loss on
// the live proxy, which holds the authoritative in-memory state.
func (w *Writer) flush(ctx context.Context) {
	if w.buffer.Empty() {
		return
	}
	states, jobs, jobLogs, events := w.buffer.Drain()

	if err := w.proxies.UpsertBatch(ctx, states); err != nil {
		w.logger.Error("flush task states failed", "error", err, "count", len(states))
	}
	if err := w.jobs.InsertBatch(ctx, jobs); err != nil {
		w.logger.Error("flush task jobs failed", "error", err, "count", len(jobs))
	}
	for _, row := range jobLogs {
		if err := w.jobLogs.Insert(ctx, row); err != nil {
			w.logger.Error("flush task job log failed", "error", err)
		}
	}
	for _, row := range events {
		if err := w.events.Insert(ctx, row); err != nil {
			w.logger.Error("flush task event failed", "error", err)
		}
	}
}
