package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/workgrid/contract-engine/internal/ports"
)

type ProjectClient struct{ baseClient }

func NewProjectClient(baseURL string, timeout time.Duration) *ProjectClient {
	return &ProjectClient{newBaseClient(baseURL, timeout)}
}

var _ ports.ProjectClient = (*ProjectClient)(nil)

func (c *ProjectClient) AddMember(ctx context.Context, projectID, userID, role, memberType string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/projects/%s/members", projectID), map[string]string{
		"user_id":     userID,
		"role":        role,
		"member_type": memberType,
	}, nil)
}

func (c *ProjectClient) RemoveMember(ctx context.Context, projectID, userID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/projects/%s/members/%s", projectID, userID), nil, nil)
}

func (c *ProjectClient) ReassignOwner(ctx context.Context, projectID, userID string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/projects/%s/owner", projectID), map[string]string{
		"user_id": userID,
	}, nil)
}

type TaskClient struct{ baseClient }

func NewTaskClient(baseURL string, timeout time.Duration) *TaskClient {
	return &TaskClient{newBaseClient(baseURL, timeout)}
}

var _ ports.TaskClient = (*TaskClient)(nil)

func (c *TaskClient) GetTask(ctx context.Context, taskID string) (ports.TaskRef, error) {
	var out struct {
		Data struct {
			TaskID      string `json:"task_id"`
			ProjectID   string `json:"project_id"`
			WorkspaceID string `json:"workspace_id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/tasks/%s", taskID), nil, &out); err != nil {
		return ports.TaskRef{}, err
	}
	return ports.TaskRef{
		TaskID:      out.Data.TaskID,
		ProjectID:   out.Data.ProjectID,
		WorkspaceID: out.Data.WorkspaceID,
	}, nil
}

func (c *TaskClient) Assign(ctx context.Context, taskID, userID string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/tasks/%s/assignee", taskID), map[string]string{
		"user_id": userID,
	}, nil)
}

func (c *TaskClient) Unassign(ctx context.Context, taskID, userID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/tasks/%s/assignee/%s", taskID, userID), nil, nil)
}

func (c *TaskClient) SetStatus(ctx context.Context, taskID, status string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/tasks/%s/status", taskID), map[string]string{
		"status": status,
	}, nil)
}

type WorkspaceClient struct{ baseClient }

func NewWorkspaceClient(baseURL string, timeout time.Duration) *WorkspaceClient {
	return &WorkspaceClient{newBaseClient(baseURL, timeout)}
}

var _ ports.WorkspaceClient = (*WorkspaceClient)(nil)

func (c *WorkspaceClient) AddMember(ctx context.Context, workspaceID, userID, role, memberType string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/workspaces/%s/members", workspaceID), map[string]string{
		"user_id":     userID,
		"role":        role,
		"member_type": memberType,
	}, nil)
}

func (c *WorkspaceClient) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/workspaces/%s/members/%s", workspaceID, userID), nil, nil)
}

type ChatClient struct{ baseClient }

func NewChatClient(baseURL string, timeout time.Duration) *ChatClient {
	return &ChatClient{newBaseClient(baseURL, timeout)}
}

var _ ports.ChatClient = (*ChatClient)(nil)

func (c *ChatClient) AddMember(ctx context.Context, conversationID, userID, role string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/conversations/%s/members", conversationID), map[string]string{
		"user_id": userID,
		"role":    role,
	}, nil)
}

type NotificationClient struct{ baseClient }

func NewNotificationClient(baseURL string, timeout time.Duration) *NotificationClient {
	return &NotificationClient{newBaseClient(baseURL, timeout)}
}

var _ ports.Notifier = (*NotificationClient)(nil)

func (c *NotificationClient) Notify(ctx context.Context, userID, kind string, payload map[string]any) error {
	if !c.configured() {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/v1/notifications", map[string]any{
		"user_id": userID,
		"kind":    kind,
		"payload": payload,
	}, nil)
}
