package task

import (
	"context"
	"time"

	domain "github.com/example/task-tracker/domain/task"
)

// TaskResponse is the wire shape of a task.
type TaskResponse struct {
	ID          uint64 `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
	CreatedAt   string `json:"created_at"`
}

// TaskReply is the reply of every single-task service.
// Exactly one of Task and Error is set.
type TaskReply struct {
	Task  *TaskResponse `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID uint64 `json:"id"`
}

// ListTasksRequest is the request for listing active tasks.
type ListTasksRequest struct{}

// ListTasksResponse is the response containing all active tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
	Error *ServiceError  `json:"error,omitempty"`
}

// UpdateTaskRequest is the request for updating a task.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	ID          uint64  `json:"id"`
	Content     *string `json:"content,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CloseTaskRequest is the request for closing a task.
type CloseTaskRequest struct {
	ID uint64 `json:"id"`
}

// ReopenTaskRequest is the request for reopening a task.
type ReopenTaskRequest struct {
	ID uint64 `json:"id"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint64 `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	ID      uint64        `json:"id"`
	Error   *ServiceError `json:"error,omitempty"`
}

// TaskPort defines the task operations available to other modules.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, id uint64) (*TaskResponse, error)
	ListTasks(ctx context.Context) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	CloseTask(ctx context.Context, id uint64) (*TaskResponse, error)
	ReopenTask(ctx context.Context, id uint64) (*TaskResponse, error)
	DeleteTask(ctx context.Context, id uint64) error
}

// ToTaskResponse converts either task variant to its wire shape.
func ToTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID().Uint64(),
		Content:     t.Content().String(),
		Description: t.Description().String(),
		IsCompleted: t.Completed(),
		CreatedAt:   t.CreatedAt().Format(time.RFC3339Nano),
	}
}
