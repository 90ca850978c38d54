package api

import "github.com/example/task-tracker/modules/activity"

// CreateTaskRequest is the HTTP request for creating a task.
type CreateTaskRequest struct {
	Content     string `json:"content"`
	Description string `json:"description"`
}

// UpdateTaskRequest is the HTTP request for updating a task.
// Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Content     *string `json:"content,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TaskResponse is the HTTP response for a single task.
type TaskResponse struct {
	ID          uint64 `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
	CreatedAt   string `json:"created_at"`
}

// ListTasksResponse is the HTTP response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// ActivityResponse is the HTTP response for the activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
