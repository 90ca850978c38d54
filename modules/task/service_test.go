package task

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestModule(t *testing.T) *TaskModule {
	t.Helper()
	m := NewModuleWithRepo(domain.NewMemoryRepo())
	require.NoError(t, m.Start(context.Background()))
	return m
}

func create(t *testing.T, m *TaskModule, content, description string) *TaskResponse {
	t.Helper()
	reply, err := m.createTask(context.Background(), CreateTaskRequest{Content: content, Description: description}, nil)
	require.NoError(t, err)
	require.Nil(t, reply.Error)
	require.NotNil(t, reply.Task)
	return reply.Task
}

func TestCreateTask(t *testing.T) {
	m := newTestModule(t)
	start := time.Now().Round(0)

	task := create(t, m, "Buy milk", "2%")

	assert.Equal(t, uint64(1), task.ID)
	assert.Equal(t, "Buy milk", task.Content)
	assert.Equal(t, "2%", task.Description)
	assert.False(t, task.IsCompleted)

	created, err := time.Parse(time.RFC3339Nano, task.CreatedAt)
	require.NoError(t, err)
	assert.False(t, created.Before(start))
}

func TestCreateTask_Validation(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{name: "empty content", req: CreateTaskRequest{Content: "", Description: "d"}, wantErr: domain.ErrEmpty},
		{name: "long content", req: CreateTaskRequest{Content: strings.Repeat("x", 501), Description: "d"}, wantErr: domain.ErrTooLong},
		{name: "empty description", req: CreateTaskRequest{Content: "c", Description: ""}, wantErr: domain.ErrEmpty},
		{name: "long description", req: CreateTaskRequest{Content: "c", Description: strings.Repeat("x", 2001)}, wantErr: domain.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := m.createTask(ctx, tt.req, nil)
			require.NoError(t, err)
			require.NotNil(t, reply.Error)
			assert.Nil(t, reply.Task)
			assert.Equal(t, CodeValidation, reply.Error.Code)
			assert.ErrorIs(t, reply.Error, tt.wantErr)
		})
	}
}

func TestGetTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	created := create(t, m, "Buy milk", "2%")

	reply, err := m.getTask(ctx, GetTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Task)
	assert.Equal(t, *created, *reply.Task)

	t.Run("completed task", func(t *testing.T) {
		_, err := m.closeTask(ctx, CloseTaskRequest{ID: created.ID}, nil)
		require.NoError(t, err)

		reply, err := m.getTask(ctx, GetTaskRequest{ID: created.ID}, nil)
		require.NoError(t, err)
		require.NotNil(t, reply.Task)
		assert.True(t, reply.Task.IsCompleted)
	})

	t.Run("missing task", func(t *testing.T) {
		reply, err := m.getTask(ctx, GetTaskRequest{ID: 404}, nil)
		require.NoError(t, err)
		require.NotNil(t, reply.Error)
		assert.ErrorIs(t, reply.Error, domain.ErrNotFound)
	})
}

func TestListTasks(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	resp, err := m.listTasks(ctx, ListTasksRequest{}, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Tasks)
	assert.Equal(t, 0, resp.Total)

	create(t, m, "one", "first")
	second := create(t, m, "two", "second")
	create(t, m, "three", "third")
	_, err = m.closeTask(ctx, CloseTaskRequest{ID: second.ID}, nil)
	require.NoError(t, err)

	resp, err = m.listTasks(ctx, ListTasksRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "one", resp.Tasks[0].Content)
	assert.Equal(t, "three", resp.Tasks[1].Content)
}

func TestUpdateTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	created := create(t, m, "Buy milk", "2%")

	t.Run("content only", func(t *testing.T) {
		reply, err := m.updateTask(ctx, UpdateTaskRequest{ID: created.ID, Content: strPtr("Buy oat milk")}, nil)
		require.NoError(t, err)
		require.NotNil(t, reply.Task)
		assert.Equal(t, "Buy oat milk", reply.Task.Content)
		assert.Equal(t, "2%", reply.Task.Description)
		assert.Equal(t, created.CreatedAt, reply.Task.CreatedAt)
	})

	t.Run("description only", func(t *testing.T) {
		reply, err := m.updateTask(ctx, UpdateTaskRequest{ID: created.ID, Description: strPtr("Barista edition")}, nil)
		require.NoError(t, err)
		require.NotNil(t, reply.Task)
		assert.Equal(t, "Buy oat milk", reply.Task.Content)
		assert.Equal(t, "Barista edition", reply.Task.Description)
	})

	t.Run("invalid content leaves task unchanged", func(t *testing.T) {
		reply, err := m.updateTask(ctx, UpdateTaskRequest{ID: created.ID, Content: strPtr("")}, nil)
		require.NoError(t, err)
		require.NotNil(t, reply.Error)
		assert.ErrorIs(t, reply.Error, domain.ErrEmpty)

		got, err := m.getTask(ctx, GetTaskRequest{ID: created.ID}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Task.Content)
	})

	t.Run("missing task", func(t *testing.T) {
		reply, err := m.updateTask(ctx, UpdateTaskRequest{ID: 99, Content: strPtr("x")}, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, reply.Error, domain.ErrNotFound)
	})

	t.Run("completed task cannot be updated", func(t *testing.T) {
		_, err := m.closeTask(ctx, CloseTaskRequest{ID: created.ID}, nil)
		require.NoError(t, err)

		reply, err := m.updateTask(ctx, UpdateTaskRequest{ID: created.ID, Content: strPtr("x")}, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, reply.Error, domain.ErrNotFound)
	})
}

func TestCloseAndReopenTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	created := create(t, m, "Buy milk", "2%")

	closed, err := m.closeTask(ctx, CloseTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, closed.Task)
	assert.True(t, closed.Task.IsCompleted)

	again, err := m.closeTask(ctx, CloseTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, again.Error, domain.ErrNotFound)

	reopened, err := m.reopenTask(ctx, ReopenTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, reopened.Task)
	assert.Equal(t, *created, *reopened.Task)

	reopenActive, err := m.reopenTask(ctx, ReopenTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, reopenActive.Error, domain.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	created := create(t, m, "Buy milk", "2%")

	resp, err := m.deleteTask(ctx, DeleteTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Deleted)
	assert.Nil(t, resp.Error)

	got, err := m.getTask(ctx, GetTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, got.Error, domain.ErrNotFound)

	resp, err = m.deleteTask(ctx, DeleteTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	assert.False(t, resp.Deleted)
	assert.ErrorIs(t, resp.Error, domain.ErrNotFound)
}

// brokenRepo fails every storage call.
type brokenRepo struct {
	domain.Repo
}

func (brokenRepo) FindActiveTask(context.Context, domain.TaskID) (domain.ActiveTask, error) {
	return domain.ActiveTask{}, &domain.RepoError{Op: "find active task", Err: errors.New("connection refused")}
}

func (brokenRepo) FindActiveTasks(context.Context) ([]domain.ActiveTask, error) {
	return nil, &domain.RepoError{Op: "find active tasks", Err: errors.New("connection refused")}
}

func (brokenRepo) SaveNewTask(context.Context, domain.NewTask) (domain.ActiveTask, error) {
	return domain.ActiveTask{}, &domain.RepoError{Op: "save new task", Err: errors.New("disk full")}
}

func TestStorageErrorsAreOpaque(t *testing.T) {
	m := NewModuleWithRepo(brokenRepo{})
	ctx := context.Background()

	reply, err := m.createTask(ctx, CreateTaskRequest{Content: "c", Description: "d"}, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Error)
	assert.Equal(t, CodeStorage, reply.Error.Code)
	assert.NotContains(t, reply.Error.Message, "disk full")
	assert.NotErrorIs(t, reply.Error, domain.ErrNotFound)

	got, err := m.getTask(ctx, GetTaskRequest{ID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeStorage, got.Error.Code)

	list, err := m.listTasks(ctx, ListTasksRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeStorage, list.Error.Code)
}

func TestServiceError_Is(t *testing.T) {
	notFound := &ServiceError{Code: CodeNotFound}
	assert.ErrorIs(t, notFound, domain.ErrNotFound)
	assert.NotErrorIs(t, notFound, domain.ErrEmpty)

	tooLong := &ServiceError{Code: CodeValidation, Reason: "too_long"}
	assert.ErrorIs(t, tooLong, domain.ErrTooLong)
	assert.NotErrorIs(t, tooLong, domain.ErrEmpty)

	storage := &ServiceError{Code: CodeStorage}
	assert.NotErrorIs(t, storage, domain.ErrNotFound)
}

func TestTaskModule_SQLiteLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "tasks.db")

	m := NewModule(cfg)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	t.Cleanup(func() { _ = m.Stop(ctx) })

	health := m.Health(ctx)
	assert.True(t, health.Healthy)
	assert.Equal(t, DriverSQLite, health.Details["driver"])

	created := create(t, m, "Buy milk", "2%")
	closed, err := m.closeTask(ctx, CloseTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	assert.True(t, closed.Task.IsCompleted)
}

func TestTaskModule_HealthBeforeStart(t *testing.T) {
	m := NewModule(DefaultConfig())
	health := m.Health(context.Background())
	assert.False(t, health.Healthy)
	assert.Equal(t, "database not initialized", health.Message)
}

// savesRepo counts writes of active tasks.
type savesRepo struct {
	domain.Repo
	saves int
}

func (r *savesRepo) SaveActiveTask(ctx context.Context, task domain.ActiveTask) (domain.ActiveTask, error) {
	r.saves++
	return r.Repo.SaveActiveTask(ctx, task)
}

func TestUpdateTask_NoFieldsIsNoOp(t *testing.T) {
	repo := &savesRepo{Repo: domain.NewMemoryRepo()}
	m := NewModuleWithRepo(repo)
	ctx := context.Background()
	created := create(t, m, "Buy milk", "2%")

	reply, err := m.updateTask(ctx, UpdateTaskRequest{ID: created.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Task)
	assert.Equal(t, *created, *reply.Task)
	assert.Equal(t, 0, repo.saves)

	reply, err = m.updateTask(ctx, UpdateTaskRequest{ID: 404}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, reply.Error, domain.ErrNotFound)
}
