package ports

import (
	"context"
	"time"
)

// SweepLock serializes background sweeps across replicas. Acquire returns
// false when another worker holds the lock.
type SweepLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// NotificationDedup suppresses duplicate notifications when a lifecycle step
// is replayed by the reconciliation sweep.
type NotificationDedup interface {
	FirstDelivery(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
