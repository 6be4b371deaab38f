package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/workgrid/contract-engine/internal/adapters/memory"
	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

const (
	payerID = "u-payer"
	payeeID = "u-payee"
)

type recordedCall struct {
	Op       string
	TargetID string
	UserID   string
}

type fakeCollaborators struct {
	mu    sync.Mutex
	calls []recordedCall
	fail  map[string]error
	task  ports.TaskRef
}

func newFakeCollaborators() *fakeCollaborators {
	return &fakeCollaborators{fail: map[string]error{}}
}

func (f *fakeCollaborators) record(op, targetID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[op]; err != nil {
		return err
	}
	f.calls = append(f.calls, recordedCall{Op: op, TargetID: targetID, UserID: userID})
	return nil
}

func (f *fakeCollaborators) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Op)
	}
	return out
}

func (f *fakeCollaborators) AddMember(_ context.Context, projectID, userID, _, _ string) error {
	return f.record("project.add_member", projectID, userID)
}

func (f *fakeCollaborators) RemoveMember(_ context.Context, projectID, userID string) error {
	return f.record("project.remove_member", projectID, userID)
}

func (f *fakeCollaborators) ReassignOwner(_ context.Context, projectID, userID string) error {
	return f.record("project.reassign_owner", projectID, userID)
}

func (f *fakeCollaborators) GetTask(_ context.Context, taskID string) (ports.TaskRef, error) {
	if err := f.fail["task.get"]; err != nil {
		return ports.TaskRef{}, err
	}
	ref := f.task
	if ref.TaskID == "" {
		ref.TaskID = taskID
	}
	return ref, nil
}

func (f *fakeCollaborators) Assign(_ context.Context, taskID, userID string) error {
	return f.record("task.assign", taskID, userID)
}

func (f *fakeCollaborators) Unassign(_ context.Context, taskID, userID string) error {
	return f.record("task.unassign", taskID, userID)
}

func (f *fakeCollaborators) SetStatus(_ context.Context, taskID, status string) error {
	return f.record("task.set_status", taskID, status)
}

type fakeWorkspace struct{ *fakeCollaborators }

func (f fakeWorkspace) AddMember(_ context.Context, workspaceID, userID, _, _ string) error {
	return f.record("workspace.add_member", workspaceID, userID)
}

func (f fakeWorkspace) RemoveMember(_ context.Context, workspaceID, userID string) error {
	return f.record("workspace.remove_member", workspaceID, userID)
}

type fakeChat struct{ *fakeCollaborators }

func (f fakeChat) AddMember(_ context.Context, conversationID, userID, _ string) error {
	return f.record("chat.add_member", conversationID, userID)
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	byKey map[string]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{byKey: map[string]int{}}
}

func (f *fakeNotifier) Notify(_ context.Context, userID, kind string, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, userID+":"+kind)
	f.byKey[userID+":"+kind]++
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []contracts.EventEnvelope
	dlq    []contracts.DLQRecord
	err    error
}

func (p *capturePublisher) PublishDomain(_ context.Context, envelope contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, envelope)
	return nil
}

func (p *capturePublisher) PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error {
	return p.PublishDomain(ctx, envelope)
}

func (p *capturePublisher) PublishDLQ(_ context.Context, record contracts.DLQRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dlq = append(p.dlq, record)
	return nil
}

type testEnv struct {
	svc       *application.Service
	repos     *memory.Repositories
	clients   *fakeCollaborators
	notifier  *fakeNotifier
	domainPub *capturePublisher
	analytics *capturePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil)
}

// newTestEnvWith lets a test tweak the wiring (batch sizes, wrapped
// repositories) before the service is built.
func newTestEnvWith(t *testing.T, mutate func(*application.Dependencies)) *testEnv {
	t.Helper()
	repos := memory.NewRepositories()
	collaborators := newFakeCollaborators()
	notifier := newFakeNotifier()
	domainPub := &capturePublisher{}
	analyticsPub := &capturePublisher{}

	deps := application.Dependencies{
		Contracts:    repos.Contracts,
		Holds:        repos.Holds,
		Wallets:      repos.Wallets,
		Outbox:       repos.Outbox,
		Project:      collaborators,
		Task:         collaborators,
		Workspace:    fakeWorkspace{collaborators},
		Chat:         fakeChat{collaborators},
		Notifier:     notifier,
		Dedup:        memory.NewNotificationDedup(),
		DomainEvents: domainPub,
		Analytics:    analyticsPub,
		DLQ:          domainPub,
	}
	if mutate != nil {
		mutate(&deps)
	}
	svc := application.NewService(deps)
	return &testEnv{
		svc:       svc,
		repos:     repos,
		clients:   collaborators,
		notifier:  notifier,
		domainPub: domainPub,
		analytics: analyticsPub,
	}
}

func actorFor(userID string) application.Actor {
	return application.Actor{SubjectID: userID, RequestID: "req-" + userID}
}

func (e *testEnv) deposit(t *testing.T, userID string, amount float64) {
	t.Helper()
	_, err := e.svc.Deposit(context.Background(), actorFor(userID), application.DepositInput{
		OwnerID: userID,
		Amount:  amount,
	})
	require.NoError(t, err)
}

func (e *testEnv) balance(t *testing.T, userID string) float64 {
	t.Helper()
	wallet, err := e.repos.Wallets.GetByID(context.Background(), domain.OwnerTypeUser+":"+userID)
	require.NoError(t, err)
	return wallet.Balance
}

func (e *testEnv) proposeTask(t *testing.T, amount float64, milestones []domain.Milestone) domain.Contract {
	t.Helper()
	contract, err := e.svc.Propose(context.Background(), actorFor(payerID), application.ProposeInput{
		Type:           domain.TypeTaskAssignment,
		CounterpartyID: payeeID,
		Title:          "Implement ingestion pipeline",
		Terms: domain.Terms{
			Amount:     amount,
			TaskID:     "t-1",
			ProjectID:  "p-1",
			Milestones: milestones,
		},
	})
	require.NoError(t, err)
	return contract
}

func (e *testEnv) proposeInvite(t *testing.T) domain.Contract {
	t.Helper()
	contract, err := e.svc.Propose(context.Background(), actorFor(payerID), application.ProposeInput{
		Type:           domain.TypeWorkspaceInvite,
		CounterpartyID: payeeID,
		Title:          "Join the design workspace",
		Terms:          domain.Terms{WorkspaceID: "w-1"},
	})
	require.NoError(t, err)
	return contract
}

func (e *testEnv) sign(t *testing.T, contractID string) domain.Contract {
	t.Helper()
	contract, err := e.svc.Sign(context.Background(), actorFor(payeeID), application.SignInput{
		ContractID: contractID,
		FullName:   "Pat Doe",
	})
	require.NoError(t, err)
	return contract
}

func (e *testEnv) auditActions(t *testing.T, contractID string) []string {
	t.Helper()
	entries, err := e.repos.Contracts.ListAudit(context.Background(), contractID)
	require.NoError(t, err)
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func pastTime(d time.Duration) *time.Time {
	ts := time.Now().UTC().Add(-d)
	return &ts
}
