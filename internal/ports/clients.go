package ports

import "context"

// Collaborator services consumed by the enforcement engine. All of these are
// owned by other teams; failures are logged and audited, never propagated.

type TaskRef struct {
	TaskID      string
	ProjectID   string
	WorkspaceID string
}

type ProjectClient interface {
	AddMember(ctx context.Context, projectID, userID, role, memberType string) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	ReassignOwner(ctx context.Context, projectID, userID string) error
}

type TaskClient interface {
	GetTask(ctx context.Context, taskID string) (TaskRef, error)
	Assign(ctx context.Context, taskID, userID string) error
	Unassign(ctx context.Context, taskID, userID string) error
	SetStatus(ctx context.Context, taskID, status string) error
}

type WorkspaceClient interface {
	AddMember(ctx context.Context, workspaceID, userID, role, memberType string) error
	RemoveMember(ctx context.Context, workspaceID, userID string) error
}

type ChatClient interface {
	AddMember(ctx context.Context, conversationID, userID, role string) error
}

// Notifier is fire-and-forget; delivery failures are logged only.
type Notifier interface {
	Notify(ctx context.Context, userID, kind string, payload map[string]any) error
}
