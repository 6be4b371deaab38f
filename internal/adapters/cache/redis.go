package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workgrid/contract-engine/internal/ports"
)

// Connect opens and validates a Redis client.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// SweepLock is a SET NX lock keyed per sweep name. Expiry guards against a
// crashed holder; Release is best-effort.
type SweepLock struct {
	client *redis.Client
	prefix string
}

func NewSweepLock(client *redis.Client) *SweepLock {
	return &SweepLock{client: client, prefix: "contract-engine:sweep:"}
}

var _ ports.SweepLock = (*SweepLock)(nil)

func (l *SweepLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+name, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sweep lock %s: %w", name, err)
	}
	return ok, nil
}

func (l *SweepLock) Release(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, l.prefix+name).Err(); err != nil {
		return fmt.Errorf("release sweep lock %s: %w", name, err)
	}
	return nil
}

// NotificationDedup marks a notification key on first sight so lifecycle
// replays do not re-notify within the TTL window.
type NotificationDedup struct {
	client *redis.Client
	prefix string
}

func NewNotificationDedup(client *redis.Client) *NotificationDedup {
	return &NotificationDedup{client: client, prefix: "contract-engine:notify:"}
}

var _ ports.NotificationDedup = (*NotificationDedup)(nil)

func (d *NotificationDedup) FirstDelivery(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup notification %s: %w", key, err)
	}
	return ok, nil
}
