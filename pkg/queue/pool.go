package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
)

// WorkerPool manages a pool of incident workers, grounded on the teacher's
// queue.WorkerPool (trimmed of session cancellation registry and orphan
// detection — a traversal has no mid-flight pause/cancel concept per
// spec.md §5, "no suspension, no interleaving, no cancellation within a
// traversal").
type WorkerPool struct {
	cfg       Config
	queue     incidentdb.Queue
	traverser Traverser
	workers   []*Worker
	started   bool
}

// NewWorkerPool constructs a pool. q is shared read-only across all
// workers' claim/complete calls (spec.md §5: "database connection ... pool").
func NewWorkerPool(cfg Config, q incidentdb.Queue, traverser Traverser) *WorkerPool {
	return &WorkerPool{
		cfg:       cfg,
		queue:     q,
		traverser: traverser,
		workers:   make([]*Worker, 0, cfg.WorkerCount),
	}
}

// Start spawns cfg.WorkerCount worker goroutines. Safe to call once; a
// second call is a no-op, matching the teacher's idempotent Start.
func (p *WorkerPool) Start(ctx context.Context) {
	if p.started {
		slog.Warn("worker pool already started, ignoring duplicate Start call")
		return
	}
	p.started = true

	slog.Info("starting worker pool", "worker_count", p.cfg.WorkerCount)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		worker := NewWorker(workerID, p.queue, p.cfg, p.traverser, nil)
		p.workers = append(p.workers, worker)
		worker.Start(ctx)
	}
}

// Stop signals all workers to stop and waits for their current traversal
// (if any) to finish — graceful shutdown, matching the teacher's Stop.
func (p *WorkerPool) Stop() {
	slog.Info("stopping worker pool gracefully")
	for _, w := range p.workers {
		w.Stop()
	}
	slog.Info("worker pool stopped gracefully")
}

// Health reports the pool's aggregate health, grounded on the teacher's
// WorkerPool.Health (trimmed of the queue-depth/active-session DB queries
// that require an ent-specific schema). Database connectivity is reported
// separately by incidentdb.Client.Health; the DB and queue-depth fields of
// PoolHealth are left at their zero values here.
func (p *WorkerPool) Health() *PoolHealth {
	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, w := range p.workers {
		stats := w.Health()
		workerStats[i] = stats
		if stats.Status == string(WorkerStatusWorking) {
			activeWorkers++
		}
	}

	return &PoolHealth{
		IsHealthy:     len(p.workers) > 0,
		ActiveWorkers: activeWorkers,
		TotalWorkers:  len(p.workers),
		WorkerStats:   workerStats,
	}
}
