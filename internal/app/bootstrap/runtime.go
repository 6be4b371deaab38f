package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/workgrid/contract-engine/internal/adapters/cache"
	"github.com/workgrid/contract-engine/internal/adapters/clients"
	"github.com/workgrid/contract-engine/internal/adapters/events"
	grpcadapter "github.com/workgrid/contract-engine/internal/adapters/grpc"
	httpadapter "github.com/workgrid/contract-engine/internal/adapters/http"
	"github.com/workgrid/contract-engine/internal/adapters/memory"
	"github.com/workgrid/contract-engine/internal/adapters/postgres"
	"github.com/workgrid/contract-engine/internal/adapters/security"
	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/ports"
)

// Runtime holds everything the entrypoints need after wiring.
type Runtime struct {
	Config  Config
	Logger  *slog.Logger
	Service *application.Service

	verifier ports.TokenVerifier
	lock     ports.SweepLock
	closers  []io.Closer
}

// NewRuntime wires storage, cache, clients and the application service. With
// no DATABASE_URL the service runs on in-memory repositories; the same for
// Redis and the distributed lock. That keeps local development dependency-free
// while production wires the real backends.
func NewRuntime(ctx context.Context, cfg Config) (*Runtime, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger = logger.With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	var (
		contractRepo ports.ContractRepository
		holdRepo     ports.EscrowHoldRepository
		walletRepo   ports.WalletRepository
		outboxRepo   ports.OutboxRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		repos := postgres.NewRepositories(db)
		contractRepo = repos.Contracts
		holdRepo = repos.Holds
		walletRepo = repos.Wallets
		outboxRepo = repos.Outbox
	} else {
		logger.InfoContext(ctx, "no database configured, using in-memory repositories",
			"module", "bootstrap", "layer", "app", "operation", "wire_storage", "outcome", "success")
		repos := memory.NewRepositories()
		contractRepo = repos.Contracts
		holdRepo = repos.Holds
		walletRepo = repos.Wallets
		outboxRepo = repos.Outbox
	}

	var (
		lock  ports.SweepLock
		dedup ports.NotificationDedup
	)
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		lock = cache.NewSweepLock(client)
		dedup = cache.NewNotificationDedup(client)
	} else {
		lock = memory.NewSweepLock()
		dedup = memory.NewNotificationDedup()
	}

	var verifier ports.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = security.NewJWTVerifier(cfg.JWTSecret)
	}

	domainPub := ports.DomainPublisher(events.NewLogPublisher(logger, "contracts.domain"))
	analyticsPub := ports.AnalyticsPublisher(events.NewLogPublisher(logger, "contracts.analytics"))
	dlqPub := ports.DLQPublisher(events.NewLogDLQPublisher(logger))
	var closers []io.Closer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, pubErr := events.NewKafkaPublisher(cfg.KafkaBrokers, events.KafkaTopics{
			Domain:    cfg.KafkaDomainTopic,
			Analytics: cfg.KafkaAnalyticsTopic,
			DLQ:       cfg.KafkaDLQTopic,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher",
				"module", "bootstrap", "layer", "app", "operation", "wire_events",
				"outcome", "failure", "error", pubErr.Error())
		} else {
			domainPub = kafkaPub
			analyticsPub = kafkaPub
			dlqPub = kafkaPub
			closers = append(closers, kafkaPub)
		}
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceName,
			DefaultCurrency:      cfg.DefaultCurrency,
			NotificationTTL:      cfg.NotificationTTL.Std(),
			OutboxFlushBatchSize: cfg.OutboxFlushBatchSize,
			SweepBatchSize:       cfg.SweepBatchSize,
		},
		Logger:       logger,
		Contracts:    contractRepo,
		Holds:        holdRepo,
		Wallets:      walletRepo,
		Outbox:       outboxRepo,
		Project:      clients.NewProjectClient(cfg.Clients.ProjectURL, cfg.Clients.Timeout.Std()),
		Task:         clients.NewTaskClient(cfg.Clients.TaskURL, cfg.Clients.Timeout.Std()),
		Workspace:    clients.NewWorkspaceClient(cfg.Clients.WorkspaceURL, cfg.Clients.Timeout.Std()),
		Chat:         clients.NewChatClient(cfg.Clients.ChatURL, cfg.Clients.Timeout.Std()),
		Notifier:     clients.NewNotificationClient(cfg.Clients.NotificationURL, cfg.Clients.Timeout.Std()),
		Dedup:        dedup,
		DomainEvents: domainPub,
		Analytics:    analyticsPub,
		DLQ:          dlqPub,
	})

	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Service:  svc,
		verifier: verifier,
		lock:     lock,
		closers:  closers,
	}, nil
}

// RunAPI serves the HTTP API plus the gRPC health endpoint and an in-process
// outbox flusher, shutting down gracefully when the context is cancelled.
func (rt *Runtime) RunAPI(ctx context.Context) error {
	handler := httpadapter.NewHandler(rt.Service)
	router := httpadapter.NewRouter(handler, rt.verifier, rt.Logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.Config.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpcadapter.NewServer()
	go func() {
		if err := grpcSrv.Serve(ctx, fmt.Sprintf(":%d", rt.Config.GRPCPort)); err != nil {
			rt.Logger.ErrorContext(ctx, "grpc server stopped",
				"module", "bootstrap", "layer", "app", "operation", "serve_grpc",
				"outcome", "failure", "error", err.Error())
		}
	}()

	outbox := events.NewOutboxWorker(rt.Service, rt.Logger, rt.Config.OutboxFlushInterval.Std())
	go outbox.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		rt.Logger.InfoContext(ctx, "http server listening",
			"module", "bootstrap", "layer", "app", "operation", "serve_http",
			"outcome", "success", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		grpcSrv.SetNotServing()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		rt.closeAll(ctx)
		return err
	case err := <-errCh:
		rt.closeAll(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// RunWorker runs the outbox flusher and the background sweeps.
func (rt *Runtime) RunWorker(ctx context.Context) error {
	outbox := events.NewOutboxWorker(rt.Service, rt.Logger, rt.Config.OutboxFlushInterval.Std())
	sweeps := events.NewSweepWorker(rt.Service, rt.lock, rt.Logger, rt.Config.SweepInterval.Std())

	go outbox.Run(ctx)
	sweeps.Run(ctx)
	rt.closeAll(ctx)
	return nil
}

func (rt *Runtime) closeAll(ctx context.Context) {
	for _, c := range rt.closers {
		if err := c.Close(); err != nil {
			rt.Logger.WarnContext(ctx, "closing resource failed",
				"module", "bootstrap", "layer", "app", "operation", "shutdown",
				"outcome", "failure", "error", err.Error())
		}
	}
}
