// Package incidentdb is the incident-lookup external collaborator (spec.md
// §6): a read-only interface over the TJI civilians_shot / officers_shot
// datasets, plus a small work-queue schema owned by this service. The Postgres implementation replaces the teacher's ent-based
// pkg/database client (ent is schema-only in the retrieval pack — see
// DESIGN.md) with direct github.com/jackc/pgx/v5 queries, grounded on the
// teacher's pkg/database/client.go connection-pool and migration pattern.
package incidentdb

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when (incident_id, dataset_type) has no matching
// row. spec.md §6 calls this out as a recoverable error, not a panic.
var ErrNotFound = errors.New("incident not found")

// BaselineFields is the shape spec.md §6 requires lookup() to return.
type BaselineFields struct {
	OfficerName  *string
	CivilianName *string
	IncidentDate *time.Time
	Location     *string
	Severity     string
}

// Repository is the incident-lookup interface consumed by pkg/enrich's
// Extract node. It is the only external collaborator Extract depends on.
type Repository interface {
	Lookup(ctx context.Context, incidentID string, dataset string) (*BaselineFields, error)
}

// QueueRow is one pending incident claimed from the queue table by a
// worker (pkg/queue). Distinct from BaselineFields: this is enrichment's own
// work-queue bookkeeping, not a TJI dataset row.
type QueueRow struct {
	ID          string
	IncidentID  string
	DatasetType string
	ClaimedAt   *time.Time
}

// QueueStatus is the current state of the most recently enqueued row for
// an incident, surfaced by the pkg/api incident-status endpoint.
type QueueStatus struct {
	RowID            string
	IncidentID       string
	Status           string // pending | claimed | completed | escalated | timed_out
	ReasoningSummary string
	EscalationReason *string
}

// Queue is the work-queue interface consumed by pkg/queue's worker pool.
type Queue interface {
	// Claim locks and returns one pending row, or (nil, nil) if none are
	// available. Implementations use SELECT ... FOR UPDATE SKIP LOCKED so
	// concurrent workers never double-claim a row (spec.md §5: database
	// connection is a short-lived lease per call, pooled).
	Claim(ctx context.Context, workerID string) (*QueueRow, error)
	// Complete marks a row terminal with the traversal's outcome.
	Complete(ctx context.Context, rowID string, status string, reasoningSummary string, escalationReason *string) error
	// Enqueue inserts a new pending row for a given incident.
	Enqueue(ctx context.Context, incidentID string, datasetType string) (string, error)
}
