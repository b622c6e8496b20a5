// Package health serves liveness and readiness endpoints.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/nrjais/aerostore/internal/db"
	"github.com/pkg/errors"
)

const goroutineThreshold = 100000

// PostgresCheck fails when the pool cannot reach the database within timeout.
func PostgresCheck(pool db.PostgresPool, timeout time.Duration) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return errors.Wrap(err, "healthcheck failed to reach database")
		}
		return nil
	}
}

// NewHandler serves /live and /ready.
func NewHandler(pool db.PostgresPool) healthcheck.Handler {
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(goroutineThreshold))
	health.AddReadinessCheck("database", PostgresCheck(pool, 2*time.Second))
	return health
}

// Mux serves the health endpoints next to the metrics handler.
func Mux(health healthcheck.Handler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/live", health.LiveEndpoint)
	mux.HandleFunc("/ready", health.ReadyEndpoint)
	return mux
}
