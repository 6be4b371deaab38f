package application

import (
	"log/slog"
	"time"

	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

type Config struct {
	ServiceName          string
	DefaultCurrency      string
	NotificationTTL      time.Duration
	OutboxFlushBatchSize int
	SweepBatchSize       int
}

type Actor struct {
	SubjectID string
	Role      string
	RequestID string
}

type ProposeInput struct {
	Type           string
	CounterpartyID string
	Title          string
	Description    string
	Terms          domain.Terms
	ExpiresAt      *time.Time
}

type SignInput struct {
	ContractID string
	FullName   string
}

type RejectInput struct {
	ContractID string
	Reason     string
}

type TerminateInput struct {
	ContractID string
	Reason     string
}

type DisputeInput struct {
	ContractID string
	Reason     string
}

type MilestoneEvidenceInput struct {
	ContractID  string
	MilestoneID string
	Evidence    string
}

type ApproveMilestoneInput struct {
	ContractID  string
	MilestoneID string
}

type DepositInput struct {
	OwnerID   string
	OwnerType string
	Amount    float64
	Currency  string
}

type WithdrawInput struct {
	OwnerID   string
	OwnerType string
	Amount    float64
}

type ListContractsOutput struct {
	Items []domain.Contract
	Total int
}

type Service struct {
	cfg    Config
	logger *slog.Logger

	contracts ports.ContractRepository
	holds     ports.EscrowHoldRepository
	wallets   ports.WalletRepository
	outbox    ports.OutboxRepository

	project   ports.ProjectClient
	task      ports.TaskClient
	workspace ports.WorkspaceClient
	chat      ports.ChatClient
	notifier  ports.Notifier
	dedup     ports.NotificationDedup

	domainEvents ports.DomainPublisher
	analytics    ports.AnalyticsPublisher
	dlq          ports.DLQPublisher

	nowFn func() time.Time
}

type Dependencies struct {
	Config Config
	Logger *slog.Logger

	Contracts ports.ContractRepository
	Holds     ports.EscrowHoldRepository
	Wallets   ports.WalletRepository
	Outbox    ports.OutboxRepository

	Project   ports.ProjectClient
	Task      ports.TaskClient
	Workspace ports.WorkspaceClient
	Chat      ports.ChatClient
	Notifier  ports.Notifier
	Dedup     ports.NotificationDedup

	DomainEvents ports.DomainPublisher
	Analytics    ports.AnalyticsPublisher
	DLQ          ports.DLQPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "contract-engine"
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	if cfg.NotificationTTL <= 0 {
		cfg.NotificationTTL = 24 * time.Hour
	}
	if cfg.OutboxFlushBatchSize <= 0 {
		cfg.OutboxFlushBatchSize = 100
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 50
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:          cfg,
		logger:       logger.With("service", cfg.ServiceName, "layer", "application"),
		contracts:    deps.Contracts,
		holds:        deps.Holds,
		wallets:      deps.Wallets,
		outbox:       deps.Outbox,
		project:      deps.Project,
		task:         deps.Task,
		workspace:    deps.Workspace,
		chat:         deps.Chat,
		notifier:     deps.Notifier,
		dedup:        deps.Dedup,
		domainEvents: deps.DomainEvents,
		analytics:    deps.Analytics,
		dlq:          deps.DLQ,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}
