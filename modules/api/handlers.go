package api

import (
	"errors"
	"log"
	"strconv"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
)

const defaultActivityLimit = 20

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api/v1")

	tasks := api.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Post("/:id", m.updateTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Post("/:id/close", m.closeTask)
	tasks.Post("/:id/reopen", m.reopenTask)

	api.Get("/activity", m.recentActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"addr":   m.addr,
		},
	})
}

// listTasks handles GET /api/v1/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	resp, err := m.taskAdapter.ListTasks(c.Context())
	if err != nil {
		return writeError(c, err)
	}

	tasks := make([]TaskResponse, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		tasks = append(tasks, toTaskResponse(&t))
	}

	return c.JSON(ListTasksResponse{
		Tasks: tasks,
		Total: resp.Total,
	})
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := m.taskAdapter.CreateTask(c.Context(), &task.CreateTaskRequest{
		Content:     req.Content,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(resp))
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	resp, err := m.taskAdapter.GetTask(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toTaskResponse(resp))
}

// updateTask handles POST and PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := m.taskAdapter.UpdateTask(c.Context(), &task.UpdateTaskRequest{
		ID:          id,
		Content:     req.Content,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toTaskResponse(resp))
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	if err := m.taskAdapter.DeleteTask(c.Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// closeTask handles POST /api/v1/tasks/:id/close.
func (m *APIModule) closeTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	resp, err := m.taskAdapter.CloseTask(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toTaskResponse(resp))
}

// reopenTask handles POST /api/v1/tasks/:id/reopen.
func (m *APIModule) reopenTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return invalidID(c)
	}

	resp, err := m.taskAdapter.ReopenTask(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(toTaskResponse(resp))
}

// recentActivity handles GET /api/v1/activity?limit=N.
func (m *APIModule) recentActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultActivityLimit)

	resp, err := m.activityAdapter.Recent(c.Context(), limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(ActivityResponse{
		Entries: resp.Entries,
		Total:   resp.Total,
	})
}

// parseID reads the :id path parameter as an unsigned integer.
func parseID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   task.CodeValidation,
		Message: "Task ID must be a non-negative integer",
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}

// writeError maps a port error to an HTTP status.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmpty), errors.Is(err, domain.ErrTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   task.CodeValidation,
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   task.CodeNotFound,
			Message: "Task not found",
		})
	default:
		log.Printf("[api] Request %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Internal Server Error",
		})
	}
}

func toTaskResponse(t *task.TaskResponse) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Content:     t.Content,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
	}
}
