package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's request-reply services.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort from the task module's ServiceContainer,
// as received through SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func single[Req any](ctx context.Context, a *taskAdapter, service string, req Req) (*TaskResponse, error) {
	var reply TaskReply
	if err := call(ctx, a.container, service, req, &reply); err != nil {
		return nil, err
	}
	return taskFromReply(service, reply)
}

// taskFromReply unpacks a decoded TaskReply.
func taskFromReply(service string, reply TaskReply) (*TaskResponse, error) {
	if reply.Error != nil {
		return nil, reply.Error
	}
	if reply.Task == nil {
		return nil, fmt.Errorf("%s service returned an empty reply", service)
	}
	return reply.Task, nil
}

// CreateTask creates a task via the create service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	return single(ctx, a, "create", req)
}

// GetTask retrieves a task in either state via the get service.
func (a *taskAdapter) GetTask(ctx context.Context, id uint64) (*TaskResponse, error) {
	return single(ctx, a, "get", &GetTaskRequest{ID: id})
}

// ListTasks lists active tasks via the list service.
func (a *taskAdapter) ListTasks(ctx context.Context) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, "list", &ListTasksRequest{}, &resp); err != nil {
		return nil, err
	}
	return listFromReply(resp)
}

func listFromReply(resp ListTasksResponse) (*ListTasksResponse, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}

// UpdateTask replaces content and/or description via the update service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	return single(ctx, a, "update", req)
}

// CloseTask marks a task completed via the close service.
func (a *taskAdapter) CloseTask(ctx context.Context, id uint64) (*TaskResponse, error) {
	return single(ctx, a, "close", &CloseTaskRequest{ID: id})
}

// ReopenTask reopens a completed task via the reopen service.
func (a *taskAdapter) ReopenTask(ctx context.Context, id uint64) (*TaskResponse, error) {
	return single(ctx, a, "reopen", &ReopenTaskRequest{ID: id})
}

// DeleteTask deletes an active task via the delete service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id uint64) error {
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, "delete", &DeleteTaskRequest{ID: id}, &resp); err != nil {
		return err
	}
	return deleteFromReply(id, resp)
}

func deleteFromReply(id uint64, resp DeleteTaskResponse) error {
	if resp.Error != nil {
		return resp.Error
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %d", id)
	}
	return nil
}
