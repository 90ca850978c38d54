package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
)

// Meta is carried by every task lifecycle event.
type Meta struct {
	EventID    string    `json:"event_id"`
	TaskID     uint64    `json:"task_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta stamps a fresh event id and the current time.
func NewMeta(taskID uint64) Meta {
	return Meta{
		EventID:    uuid.New().String(),
		TaskID:     taskID,
		OccurredAt: time.Now(),
	}
}

// TaskCreatedEvent is emitted when a draft is saved for the first time.
type TaskCreatedEvent struct {
	Meta
	Content string `json:"content"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted when an active task's content or description changes.
type TaskUpdatedEvent struct {
	Meta
	Content string `json:"content"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskClosedEvent is emitted when a task is marked complete.
type TaskClosedEvent struct {
	Meta
}

// TaskClosedV1 is the typed event definition for task completion.
// Subject: events.task.v1.task-closed
var TaskClosedV1 = helper.EventDefinition[TaskClosedEvent](
	"task", "TaskClosed", "v1",
)

// TaskReopenedEvent is emitted when a completed task is reopened.
type TaskReopenedEvent struct {
	Meta
}

// TaskReopenedV1 is the typed event definition for reopening.
// Subject: events.task.v1.task-reopened
var TaskReopenedV1 = helper.EventDefinition[TaskReopenedEvent](
	"task", "TaskReopened", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted.
type TaskDeletedEvent struct {
	Meta
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
