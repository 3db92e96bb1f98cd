package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a task via the create service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create service call failed: %w", err)
	}
	return &resp, nil
}

// GetTask fetches a task via the get service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID, actorID string) (*TaskResponse, error) {
	req := GetTaskRequest{TaskID: taskID, ActorID: actorID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get service call failed: %w", err)
	}
	return &resp, nil
}

// ListTasks lists tasks via the list service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list service call failed: %w", err)
	}
	return &resp, nil
}

// UpdateTask edits a task via the update service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update service call failed: %w", err)
	}
	return &resp, nil
}

// ToggleComplete flips a task's completion state via the toggle-complete service.
func (a *taskAdapter) ToggleComplete(ctx context.Context, req *ToggleCompleteRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "toggle-complete", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("toggle-complete service call failed: %w", err)
	}
	return &resp, nil
}

// DeleteTask removes a task via the delete service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID, actorID string) error {
	req := DeleteTaskRequest{TaskID: taskID, ActorID: actorID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete service call failed: %w", err)
	}
	return nil
}

// Stats fetches dashboard counts via the stats service.
func (a *taskAdapter) Stats(ctx context.Context, actorID, teamID string) (*StatsResponse, error) {
	req := StatsRequest{ActorID: actorID, TeamID: teamID}
	var resp StatsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "stats", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("stats service call failed: %w", err)
	}
	return &resp, nil
}
