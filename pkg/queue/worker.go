package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/state"
)

// WorkerStatus mirrors the teacher's queue.WorkerStatus.
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// Config holds worker-pool tuning, grounded on the teacher's
// config.QueueConfig (WorkerCount, PollInterval, MaxConcurrentSessions ->
// here IncidentTimeout bounds one traversal instead of a chat session).
type Config struct {
	WorkerCount        int
	PollInterval       time.Duration
	PollIntervalJitter time.Duration
	IncidentTimeout    time.Duration
}

// DefaultConfig mirrors spec.md §5's default worker count of 5.
func DefaultConfig() Config {
	return Config{
		WorkerCount:        5,
		PollInterval:       2 * time.Second,
		PollIntervalJitter: 500 * time.Millisecond,
		IncidentTimeout:    2 * time.Minute,
	}
}

// Worker polls incidentdb.Queue for pending incidents and runs one
// traversal at a time, grounded on the teacher's queue.Worker.
type Worker struct {
	id        string
	queue     incidentdb.Queue
	cfg       Config
	traverser Traverser
	newState  func(incidentID, datasetType string) *state.EnrichmentState
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu                 sync.RWMutex
	status             WorkerStatus
	currentIncidentID  string
	incidentsProcessed int
	lastActivity       time.Time
}

// NewWorker constructs a worker. newState lets callers inject a constructor
// for tests; a nil newState (what WorkerPool passes) falls back to
// state.New.
func NewWorker(id string, q incidentdb.Queue, cfg Config, traverser Traverser, newState func(string, string) *state.EnrichmentState) *Worker {
	if newState == nil {
		newState = func(incidentID, datasetType string) *state.EnrichmentState {
			return state.New(incidentID, state.DatasetType(datasetType))
		}
	}
	return &Worker{
		id:           id,
		queue:        q,
		cfg:          cfg,
		traverser:    traverser,
		newState:     newState,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker's poll loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for its current traversal (if
// any) to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health reports the worker's current status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:                 w.id,
		Status:             string(w.status),
		CurrentIncidentID:  w.currentIncidentID,
		IncidentsProcessed: w.incidentsProcessed,
		LastActivity:       w.lastActivity,
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	log := slog.With("worker_id", w.id)
	log.Info("worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("worker shutting down")
			return
		case <-ctx.Done():
			log.Info("context cancelled, worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, ErrNoIncidentsAvailable) {
					w.sleep(w.pollInterval())
					continue
				}
				log.Error("error claiming incident", "error", err)
				w.sleep(time.Second)
			}
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// pollAndProcess claims one incident and runs it to a terminal stage,
// mirroring the teacher's Worker.pollAndProcess claim→execute→record shape.
func (w *Worker) pollAndProcess(ctx context.Context) error {
	row, err := w.queue.Claim(ctx, w.id)
	if err != nil {
		return fmt.Errorf("claiming incident: %w", err)
	}
	if row == nil {
		return ErrNoIncidentsAvailable
	}

	log := slog.With("incident_id", row.IncidentID, "worker_id", w.id)
	log.Info("incident claimed")

	w.setStatus(WorkerStatusWorking, row.IncidentID)
	defer w.setStatus(WorkerStatusIdle, "")

	traversalCtx, cancel := context.WithTimeout(ctx, w.cfg.IncidentTimeout)
	defer cancel()

	st := w.newState(row.IncidentID, row.DatasetType)
	result := w.traverser.Traverse(traversalCtx, st)

	status := "completed"
	var escalationReason *string
	if result.CurrentStage == state.StageEscalate {
		status = "escalated"
		if result.EscalationReason != nil {
			reason := string(*result.EscalationReason)
			escalationReason = &reason
		}
	}
	if errors.Is(traversalCtx.Err(), context.DeadlineExceeded) {
		status = "timed_out"
	}

	if err := w.queue.Complete(context.Background(), row.ID, status, result.ReasoningSummary, escalationReason); err != nil {
		log.Error("failed to record incident completion", "error", err)
		return err
	}

	w.mu.Lock()
	w.incidentsProcessed++
	w.mu.Unlock()

	log.Info("incident processing complete", "status", status, "cost_usd", result.CostUSD)
	return nil
}

func (w *Worker) pollInterval() time.Duration {
	base := w.cfg.PollInterval
	jitter := w.cfg.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

func (w *Worker) setStatus(status WorkerStatus, incidentID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentIncidentID = incidentID
	w.lastActivity = time.Now()
}
