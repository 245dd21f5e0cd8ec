package incidentdb

import (
	"context"
	"time"
)

// HealthStatus mirrors the teacher's pkg/database.HealthStatus shape,
// reporting connectivity and pool statistics for the /health endpoint.
type HealthStatus struct {
	Status          string `json:"status"`
	ResponseTime    int64  `json:"response_time_ms"`
	OpenConnections int32  `json:"open_connections"`
	Idle            int32  `json:"idle"`
	MaxConns        int32  `json:"max_conns"`
}

// Health pings the pool and reports its current statistics.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()

	if err := c.pool.Ping(ctx); err != nil {
		return &HealthStatus{Status: "unhealthy", ResponseTime: time.Since(start).Milliseconds()}, err
	}

	stat := c.pool.Stat()
	return &HealthStatus{
		Status:          "healthy",
		ResponseTime:    time.Since(start).Milliseconds(),
		OpenConnections: stat.TotalConns(),
		Idle:            stat.IdleConns(),
		MaxConns:        stat.MaxConns(),
	}, nil
}
