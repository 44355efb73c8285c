package pg

import (
	"context"
	"log/slog"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports the result store healthy while it answers a ping.
type HealthChecker struct {
	pool *ConnectionPool
}

func NewHealthChecker(pool *ConnectionPool) *HealthChecker {
	return &HealthChecker{pool: pool}
}

func (hc *HealthChecker) Healthy(ctx context.Context) bool {
	if hc.pool == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := hc.pool.Ping(ctx); err != nil {
		slog.Warn("Result store ping failed", "error", err)
		return false
	}
	return true
}
