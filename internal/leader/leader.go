// Package leader serializes schema initialization across instances with a leased lock row.
package leader

import (
	"context"
	"fmt"
	"time"

	"github.com/nrjais/aerostore/internal/db"
	"go.uber.org/zap"
)

const SchemaLockName = "schema_init"

type LeaderElector struct {
	pool       db.Querier
	instanceID string
}

func NewElector(pool db.Querier, instanceID string) *LeaderElector {
	return &LeaderElector{
		pool:       pool,
		instanceID: instanceID,
	}
}

// TryAcquire takes the named lock when it is free, expired or already held by this instance.
func (e *LeaderElector) TryAcquire(ctx context.Context, lockName string, leaseDuration time.Duration) (bool, error) {
	sql := `
		INSERT INTO schema_locks (lock_name, holder_id, expires_at)
		VALUES ($1, $2, NOW() + $3 * interval '1 second')
		ON CONFLICT (lock_name) DO UPDATE SET
			holder_id = EXCLUDED.holder_id,
			expires_at = EXCLUDED.expires_at
		WHERE schema_locks.expires_at < NOW() OR schema_locks.holder_id = $2;
	`
	leaseSeconds := int(leaseDuration.Seconds())

	acquireCtx, acquireCancel := context.WithTimeout(ctx, 5*time.Second)
	defer acquireCancel()

	cmdTag, err := e.pool.Exec(acquireCtx, sql, lockName, e.instanceID, leaseSeconds)
	if err != nil {
		return false, fmt.Errorf("[%s] failed to acquire lock: %w", lockName, err)
	}

	acquired := cmdTag.RowsAffected() > 0
	if acquired {
		zap.S().Infow("Acquired lock", "lock", lockName, "instance", e.instanceID, "lease", leaseDuration)
	}
	return acquired, nil
}

func (e *LeaderElector) Release(lockName string) error {
	sql := `
		DELETE FROM schema_locks
		WHERE lock_name = $1 AND holder_id = $2;
	`
	releaseCtx, releaseCancel := context.WithTimeout(context.Background(), time.Second)
	defer releaseCancel()

	cmdTag, err := e.pool.Exec(releaseCtx, sql, lockName, e.instanceID)
	if err != nil {
		zap.S().Errorw("Error releasing lock", "lock", lockName, "error", err)
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if cmdTag.RowsAffected() > 0 {
		zap.S().Infow("Released lock", "lock", lockName)
	} else {
		zap.S().Warnw("Lock was not held by this instance", "lock", lockName, "instance", e.instanceID)
	}
	return nil
}

// WithLock waits until the lock is acquired, runs fn and releases the lock.
func (e *LeaderElector) WithLock(ctx context.Context, lockName string, leaseDuration, retry time.Duration, fn func(ctx context.Context) error) error {
	ticker := time.NewTicker(retry)
	defer ticker.Stop()

	for {
		acquired, err := e.TryAcquire(ctx, lockName, leaseDuration)
		if err != nil {
			return err
		}
		if acquired {
			break
		}
		zap.S().Infow("Lock held by another instance, waiting", "lock", lockName)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	defer func() {
		if err := e.Release(lockName); err != nil {
			zap.S().Warnw("Failed to release lock", "lock", lockName, "error", err)
		}
	}()
	return fn(ctx)
}
