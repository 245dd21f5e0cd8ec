package api

import "github.com/txjustice/media-enrich/pkg/queue"

// EnqueueRequest is the body of POST /api/v1/incidents.
type EnqueueRequest struct {
	IncidentID  string `json:"incident_id" binding:"required"`
	DatasetType string `json:"dataset_type" binding:"required"`
}

// EnqueueResponse is returned by POST /api/v1/incidents.
type EnqueueResponse struct {
	RowID      string `json:"row_id"`
	IncidentID string `json:"incident_id"`
	Status     string `json:"status"`
}

// StatusResponse is returned by GET /api/v1/incidents/:id.
type StatusResponse struct {
	IncidentID       string  `json:"incident_id"`
	Status           string  `json:"status"`
	ReasoningSummary string  `json:"reasoning_summary,omitempty"`
	EscalationReason *string `json:"escalation_reason,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Database   string            `json:"database"`
	WorkerPool *queue.PoolHealth `json:"worker_pool,omitempty"`
}
