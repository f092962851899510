package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// HealthStatus is the result of a database health check.
type HealthStatus struct {
	Healthy      bool   `json:"healthy"`
	ResponseTime string `json:"responseTime"`
	OpenConns    int    `json:"openConns"`
	InUse        int    `json:"inUse"`
	Idle         int    `json:"idle"`
	LastError    string `json:"lastError,omitempty"`
}

func Health(ctx context.Context, db *bun.DB) *HealthStatus {
	start := time.Now()
	err := db.PingContext(ctx)
	stats := db.Stats()

	status := &HealthStatus{
		Healthy:      err == nil,
		ResponseTime: time.Since(start).String(),
		OpenConns:    stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
	}
	if err != nil {
		status.LastError = err.Error()
	}

	return status
}
