package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/ports"
)

const (
	lockExpirySweep    = "expire_pending"
	lockReconcileSweep = "reconcile_escrow"
)

// OutboxWorker drains the transactional outbox on a fixed interval.
type OutboxWorker struct {
	svc      *application.Service
	logger   *slog.Logger
	interval time.Duration
}

func NewOutboxWorker(svc *application.Service, logger *slog.Logger, interval time.Duration) *OutboxWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxWorker{svc: svc, logger: logger, interval: interval}
}

func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.svc.FlushOutbox(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox flush failed",
					"module", "events",
					"layer", "adapter",
					"operation", "flush_outbox",
					"outcome", "failure",
					"error", err.Error(),
				)
			}
		}
	}
}

// SweepWorker runs the expiry and reconciliation sweeps. A distributed lock
// keeps the sweeps single-flight across worker replicas.
type SweepWorker struct {
	svc      *application.Service
	lock     ports.SweepLock
	logger   *slog.Logger
	interval time.Duration
}

func NewSweepWorker(svc *application.Service, lock ports.SweepLock, logger *slog.Logger, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepWorker{svc: svc, lock: lock, logger: logger, interval: interval}
}

func (w *SweepWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runSweep(ctx, lockExpirySweep, func(ctx context.Context) (int, error) {
				return w.svc.ExpirePending(ctx)
			})
			w.runSweep(ctx, lockReconcileSweep, func(ctx context.Context) (int, error) {
				return w.svc.ReconcileEscrow(ctx)
			})
		}
	}
}

func (w *SweepWorker) runSweep(ctx context.Context, name string, sweep func(context.Context) (int, error)) {
	acquired, err := w.lock.Acquire(ctx, name, w.interval)
	if err != nil {
		w.logger.ErrorContext(ctx, "sweep lock unavailable",
			"module", "events",
			"layer", "adapter",
			"operation", name,
			"outcome", "failure",
			"error", err.Error(),
		)
		return
	}
	if !acquired {
		return
	}
	defer func() { _ = w.lock.Release(ctx, name) }()

	processed, err := sweep(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "sweep failed",
			"module", "events",
			"layer", "adapter",
			"operation", name,
			"outcome", "failure",
			"error", err.Error(),
		)
		return
	}
	if processed > 0 {
		w.logger.InfoContext(ctx, "sweep completed",
			"module", "events",
			"layer", "adapter",
			"operation", name,
			"outcome", "success",
			"processed", processed,
		)
	}
}
