package memory

import (
	"context"
	"sync"
	"time"

	"github.com/workgrid/contract-engine/internal/ports"
)

// SweepLock is the single-process stand-in for the Redis lock.
type SweepLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

func NewSweepLock() *SweepLock {
	return &SweepLock{
		held:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

var _ ports.SweepLock = (*SweepLock)(nil)

func (l *SweepLock) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	if expiry, ok := l.held[name]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[name] = now.Add(ttl)
	return true, nil
}

func (l *SweepLock) Release(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, name)
	return nil
}

// NotificationDedup tracks delivered notification keys with expiry.
type NotificationDedup struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	nowFn func() time.Time
}

func NewNotificationDedup() *NotificationDedup {
	return &NotificationDedup{
		seen:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

var _ ports.NotificationDedup = (*NotificationDedup)(nil)

func (d *NotificationDedup) FirstDelivery(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.nowFn()
	if expiry, ok := d.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	d.seen[key] = now.Add(ttl)
	return true, nil
}
