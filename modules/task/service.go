package task

import (
	"context"
	"errors"
	"log"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
)

// fail converts err into a reply error, logging anything that is not a
// client error.
func fail(op string, err error) *ServiceError {
	serr := toServiceError(err)
	if serr.Code == CodeStorage {
		log.Printf("[task] %s failed: %v", op, err)
	}
	return serr
}

func taskReply(t domain.Task) TaskReply {
	resp := ToTaskResponse(t)
	return TaskReply{Task: &resp}
}

// createTask handles the task.create service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	content, err := domain.NewContent(req.Content)
	if err != nil {
		return TaskReply{Error: fail("create", err)}, nil
	}
	description, err := domain.NewDescription(req.Description)
	if err != nil {
		return TaskReply{Error: fail("create", err)}, nil
	}

	saved, err := m.repo.SaveNewTask(ctx, domain.NewDraft(content, description))
	if err != nil {
		return TaskReply{Error: fail("create", err)}, nil
	}

	m.publish("TaskCreated", saved.ID(), func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			Meta:    events.NewMeta(saved.ID().Uint64()),
			Content: saved.Content().String(),
		}, nil)
	})

	return taskReply(saved), nil
}

// getTask handles the task.get service request. Active tasks are looked up
// first, then completed ones.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskReply, error) {
	id := domain.TaskIDFrom(req.ID)

	active, err := m.repo.FindActiveTask(ctx, id)
	if err == nil {
		return taskReply(active), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return TaskReply{Error: fail("get", err)}, nil
	}

	closed, err := m.repo.FindClosedTask(ctx, id)
	if err != nil {
		return TaskReply{Error: fail("get", err)}, nil
	}
	return taskReply(closed), nil
}

// listTasks handles the task.list service request.
func (m *TaskModule) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.repo.FindActiveTasks(ctx)
	if err != nil {
		return ListTasksResponse{Tasks: []TaskResponse{}, Error: fail("list", err)}, nil
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, ToTaskResponse(task))
	}
	return response, nil
}

// updateTask handles the task.update service request. A request with no
// fields returns the task unchanged without writing or publishing.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.repo.FindActiveTask(ctx, domain.TaskIDFrom(req.ID))
	if err != nil {
		return TaskReply{Error: fail("update", err)}, nil
	}
	if req.Content == nil && req.Description == nil {
		return taskReply(task), nil
	}

	if req.Content != nil {
		content, err := domain.NewContent(*req.Content)
		if err != nil {
			return TaskReply{Error: fail("update", err)}, nil
		}
		task = task.ModifyContent(content)
	}
	if req.Description != nil {
		description, err := domain.NewDescription(*req.Description)
		if err != nil {
			return TaskReply{Error: fail("update", err)}, nil
		}
		task = task.ModifyDescription(description)
	}

	saved, err := m.repo.SaveActiveTask(ctx, task)
	if err != nil {
		return TaskReply{Error: fail("update", err)}, nil
	}

	m.publish("TaskUpdated", saved.ID(), func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			Meta:    events.NewMeta(saved.ID().Uint64()),
			Content: saved.Content().String(),
		}, nil)
	})

	return taskReply(saved), nil
}

// closeTask handles the task.close service request.
func (m *TaskModule) closeTask(ctx context.Context, req CloseTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.repo.FindActiveTask(ctx, domain.TaskIDFrom(req.ID))
	if err != nil {
		return TaskReply{Error: fail("close", err)}, nil
	}

	saved, err := m.repo.SaveClosedTask(ctx, task.Close())
	if err != nil {
		return TaskReply{Error: fail("close", err)}, nil
	}

	m.publish("TaskClosed", saved.ID(), func(bus mono.EventBus) error {
		return events.TaskClosedV1.Publish(bus, events.TaskClosedEvent{
			Meta: events.NewMeta(saved.ID().Uint64()),
		}, nil)
	})

	return taskReply(saved), nil
}

// reopenTask handles the task.reopen service request.
func (m *TaskModule) reopenTask(ctx context.Context, req ReopenTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.repo.FindClosedTask(ctx, domain.TaskIDFrom(req.ID))
	if err != nil {
		return TaskReply{Error: fail("reopen", err)}, nil
	}

	saved, err := m.repo.SaveActiveTask(ctx, task.Reopen())
	if err != nil {
		return TaskReply{Error: fail("reopen", err)}, nil
	}

	m.publish("TaskReopened", saved.ID(), func(bus mono.EventBus) error {
		return events.TaskReopenedV1.Publish(bus, events.TaskReopenedEvent{
			Meta: events.NewMeta(saved.ID().Uint64()),
		}, nil)
	})

	return taskReply(saved), nil
}

// deleteTask handles the task.delete service request. Only active tasks
// can be deleted.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	task, err := m.repo.FindActiveTask(ctx, domain.TaskIDFrom(req.ID))
	if err != nil {
		return DeleteTaskResponse{ID: req.ID, Error: fail("delete", err)}, nil
	}

	if err := m.repo.DeleteActiveTask(ctx, task); err != nil {
		return DeleteTaskResponse{ID: req.ID, Error: fail("delete", err)}, nil
	}

	m.publish("TaskDeleted", task.ID(), func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			Meta: events.NewMeta(task.ID().Uint64()),
		}, nil)
	})

	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// publish emits an event if an event bus is set.
// Event publishing is best-effort; failures are logged.
func (m *TaskModule) publish(name string, id domain.TaskID, emit func(mono.EventBus) error) {
	if m.eventBus == nil {
		return
	}
	if err := emit(m.eventBus); err != nil {
		log.Printf("[task] Warning: failed to publish %s event for task %s: %v", name, id, err)
	}
}
