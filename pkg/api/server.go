// Package api provides the HTTP surface for the enrichment service: health,
// enqueue, and incident-status endpoints, grounded on the teacher's
// cmd/tarsy/main.go gin wiring (the teacher's go.mod declares gin-gonic/gin
// for its own minimal router — see DESIGN.md for why gin was kept here
// instead of the echo v5 usage visible in some of the teacher's handler
// source files, which its go.mod does not actually declare).
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/queue"
	"github.com/txjustice/media-enrich/pkg/state"
)

// IncidentStore is the subset of incidentdb.Client the API needs: enqueue a
// new incident and look up the current status of one already enqueued.
type IncidentStore interface {
	Enqueue(ctx context.Context, incidentID string, datasetType string) (string, error)
	Status(ctx context.Context, incidentID string) (*incidentdb.QueueStatus, error)
}

// Server wraps a gin.Engine with the dependencies its handlers need.
type Server struct {
	engine     *gin.Engine
	db         *incidentdb.Client
	store      IncidentStore
	workerPool *queue.WorkerPool
}

// NewServer builds the router and registers routes, mirroring the
// teacher's flat single-file route registration in cmd/tarsy/main.go.
func NewServer(db *incidentdb.Client, store IncidentStore, workerPool *queue.WorkerPool) *Server {
	s := &Server{
		engine:     gin.Default(),
		db:         db,
		store:      store,
		workerPool: workerPool,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.healthHandler)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/incidents", s.enqueueHandler)
	v1.GET("/incidents/:id", s.statusHandler)
}

// Run starts the HTTP server on addr, blocking (mirrors gin's router.Run).
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the underlying http.Handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) healthHandler(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if _, err := s.db.Health(reqCtx); err != nil {
		dbStatus = "unhealthy"
	}

	resp := HealthResponse{Status: "healthy", Database: dbStatus}
	if dbStatus != "healthy" {
		resp.Status = "unhealthy"
	}
	if s.workerPool != nil {
		poolHealth := s.workerPool.Health()
		resp.WorkerPool = poolHealth
		if poolHealth != nil && !poolHealth.IsHealthy && resp.Status == "healthy" {
			resp.Status = "degraded"
		}
	}

	httpStatus := http.StatusOK
	if resp.Status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, resp)
}

func (s *Server) enqueueHandler(c *gin.Context) {
	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dataset := state.DatasetType(req.DatasetType)
	if !dataset.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dataset_type must be CIVILIANS_SHOT or OFFICERS_SHOT"})
		return
	}

	rowID, err := s.store.Enqueue(c.Request.Context(), req.IncidentID, req.DatasetType)
	if err != nil {
		status, msg := mapRepositoryError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusAccepted, EnqueueResponse{
		RowID:      rowID,
		IncidentID: req.IncidentID,
		Status:     "pending",
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	incidentID := c.Param("id")

	st, err := s.store.Status(c.Request.Context(), incidentID)
	if err != nil {
		status, msg := mapRepositoryError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		IncidentID:       st.IncidentID,
		Status:           st.Status,
		ReasoningSummary: st.ReasoningSummary,
		EscalationReason: st.EscalationReason,
	})
}
