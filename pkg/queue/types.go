// Package queue runs a pool of workers that claim queued incidents and run
// one pipeline traversal per incident, many incidents in parallel, grounded
// on the teacher's pkg/queue/pool.go + worker.go worker-pool model (trimmed
// of session heartbeats, Slack notifications, and event publishing — none
// of which this domain's spec.md §5 concurrency model calls for).
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/txjustice/media-enrich/pkg/state"
)

// Sentinel errors returned by a worker's poll step, mirroring the teacher's
// queue.ErrNoSessionsAvailable / ErrAtCapacity.
var (
	ErrNoIncidentsAvailable = errors.New("no incidents available")
)

// Traverser runs one incident's traversal end to end (pkg/coordinator.Run),
// injected so pkg/queue has no direct dependency on pkg/enrich's
// collaborators.
type Traverser interface {
	Traverse(ctx context.Context, st *state.EnrichmentState) *state.EnrichmentState
}

// PoolHealth mirrors the teacher's queue.PoolHealth shape, without
// orphan-detection state (this domain has no heartbeat/orphan-recovery
// concept since a traversal either claims successfully and runs, or the
// claim attempt itself fails). WorkerPool.Health fills in IsHealthy,
// ActiveWorkers, TotalWorkers and WorkerStats only; DBReachable, DBError
// and QueueDepth are never set and stay at their zero values.
type PoolHealth struct {
	IsHealthy     bool           `json:"is_healthy"`
	DBReachable   bool           `json:"db_reachable"`
	DBError       string         `json:"db_error,omitempty"`
	ActiveWorkers int            `json:"active_workers"`
	TotalWorkers  int            `json:"total_workers"`
	QueueDepth    int            `json:"queue_depth"`
	WorkerStats   []WorkerHealth `json:"worker_stats"`
}

// WorkerHealth mirrors the teacher's queue.WorkerHealth.
type WorkerHealth struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"` // "idle" or "working"
	CurrentIncidentID  string    `json:"current_incident_id,omitempty"`
	IncidentsProcessed int       `json:"incidents_processed"`
	LastActivity       time.Time `json:"last_activity"`
}
