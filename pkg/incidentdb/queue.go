package incidentdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Claim locks and returns one pending row using SELECT ... FOR UPDATE SKIP
// LOCKED, so concurrent workers never double-claim a row — the mechanism
// SPEC_FULL.md §5 specifies for running many traversals in parallel, grounded
// on the teacher's queue-claiming idiom in pkg/queue/worker.go (claim →
// process → mark terminal).
func (c *Client) Claim(ctx context.Context, workerID string) (*QueueRow, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var row QueueRow
	err = tx.QueryRow(ctx, `
		SELECT id, incident_id, dataset_type
		FROM incident_queue
		WHERE status = 'pending'
		ORDER BY enqueued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&row.ID, &row.IncidentID, &row.DatasetType)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("claim query: %w", err)
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		UPDATE incident_queue
		SET status = 'claimed', claimed_by = $1, claimed_at = $2
		WHERE id = $3
	`, workerID, now, row.ID)
	if err != nil {
		return nil, fmt.Errorf("mark claimed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	row.ClaimedAt = &now
	return &row, nil
}

// Complete marks a claimed row terminal (completed, escalated or timed_out)
// with the traversal's outcome.
func (c *Client) Complete(ctx context.Context, rowID string, status string, reasoningSummary string, escalationReason *string) error {
	_, err := c.pool.Exec(ctx, `
		UPDATE incident_queue
		SET status = $1, reasoning_summary = $2, escalation_reason = $3, completed_at = $4
		WHERE id = $5
	`, status, reasoningSummary, escalationReason, time.Now(), rowID)
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

// Status returns the most recently enqueued row for an incident, or
// ErrNotFound if the incident has never been enqueued.
func (c *Client) Status(ctx context.Context, incidentID string) (*QueueStatus, error) {
	var st QueueStatus
	var reasoning *string
	err := c.pool.QueryRow(ctx, `
		SELECT id, incident_id, status, reasoning_summary, escalation_reason
		FROM incident_queue
		WHERE incident_id = $1
		ORDER BY enqueued_at DESC
		LIMIT 1
	`, incidentID).Scan(&st.RowID, &st.IncidentID, &st.Status, &reasoning, &st.EscalationReason)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("status query: %w", err)
	}
	if reasoning != nil {
		st.ReasoningSummary = *reasoning
	}
	return &st, nil
}

// Enqueue inserts a new pending row for a given incident.
func (c *Client) Enqueue(ctx context.Context, incidentID string, datasetType string) (string, error) {
	id := uuid.NewString()
	_, err := c.pool.Exec(ctx, `
		INSERT INTO incident_queue (id, incident_id, dataset_type, status, enqueued_at)
		VALUES ($1, $2, $3, 'pending', $4)
	`, id, incidentID, datasetType, time.Now())
	if err != nil {
		return "", fmt.Errorf("enqueue incident %s: %w", incidentID, err)
	}
	return id, nil
}
