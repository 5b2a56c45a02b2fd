package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks godoc
// @Summary List tasks
// @Description Filter by status and priority, search text and sort. Without a sort key dated tasks come first by due date.
// @Tags tasks
// @Produce json
// @Param status query string false "all, active or completed"
// @Param priority query string false "all, high, medium or low"
// @Param q query string false "Search text"
// @Param sort query string false "priority, date, created or completed"
// @Success 200 {object} ListResponse[entities.Task]
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	var q ports.TaskQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	tasks, err := h.taskService.QueryTasks(c.Request().Context(), q)
	if err != nil {
		return serviceError(h.logger, c, "List tasks", err)
	}

	return c.JSON(http.StatusOK, newListResponse(tasks))
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 201 {object} entities.Task
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return serviceError(h.logger, c, "Create task", err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(h.logger, c, "Get task", err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Absent fields are left untouched; an empty date clears the due date.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body ports.UpdateTaskRequest true "Changed fields"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req ports.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(h.logger, c, "Update task", err)
	}

	return c.JSON(http.StatusOK, task)
}

// ToggleTask godoc
// @Summary Toggle task completion
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	task, err := h.taskService.ToggleTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(h.logger, c, "Toggle task", err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Deleting an unknown id succeeds without changes.
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return serviceError(h.logger, c, "Delete task", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ClearTasks godoc
// @Summary Delete every task
// @Tags tasks
// @Produce json
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /tasks [delete]
func (h *TaskHandler) ClearTasks(c echo.Context) error {
	if err := h.taskService.ClearTasks(c.Request().Context()); err != nil {
		return serviceError(h.logger, c, "Clear tasks", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "All tasks deleted"})
}

// GetStats godoc
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Success 200 {object} entities.TaskStats
// @Security BearerAuth
// @Router /tasks/stats [get]
func (h *TaskHandler) GetStats(c echo.Context) error {
	stats, err := h.taskService.GetTaskStats(c.Request().Context())
	if err != nil {
		return serviceError(h.logger, c, "Task stats", err)
	}

	return c.JSON(http.StatusOK, stats)
}

// GetOverdue godoc
// @Summary Overdue tasks
// @Description Open tasks whose due date is before today.
// @Tags tasks
// @Produce json
// @Success 200 {object} ListResponse[entities.Task]
// @Security BearerAuth
// @Router /tasks/overdue [get]
func (h *TaskHandler) GetOverdue(c echo.Context) error {
	tasks, err := h.taskService.GetOverdueTasks(c.Request().Context())
	if err != nil {
		return serviceError(h.logger, c, "Overdue tasks", err)
	}

	return c.JSON(http.StatusOK, newListResponse(tasks))
}

// ExportTasks godoc
// @Summary Export tasks as JSON
// @Tags tasks
// @Produce json
// @Success 200 {array} entities.Task
// @Security BearerAuth
// @Router /tasks/export [get]
func (h *TaskHandler) ExportTasks(c echo.Context) error {
	data, err := h.taskService.ExportTasks(c.Request().Context())
	if err != nil {
		return serviceError(h.logger, c, "Export tasks", err)
	}

	return attachment(c, "tasks.json", data)
}

// ImportTasks godoc
// @Summary Replace tasks from a JSON array
// @Tags tasks
// @Accept json
// @Produce json
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /tasks/import [post]
func (h *TaskHandler) ImportTasks(c echo.Context) error {
	data, err := readImportBody(c)
	if err != nil {
		return err
	}

	n, err := h.taskService.ImportTasks(c.Request().Context(), data)
	if err != nil {
		return serviceError(h.logger, c, "Import tasks", err)
	}

	return c.JSON(http.StatusOK, ImportResponse{Imported: n})
}
