package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/logging"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
)

var allowedTaskUpdates = []string{"description", "completed"}

// TaskHandler handles task endpoints. Every route acts on the caller's own tasks.
type TaskHandler struct {
	tasks  service.TaskService
	logger logging.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks service.TaskService, logger logging.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// CreateTaskRequest represents a new task. Any owner sent by the client is ignored.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest represents a partial task update.
type UpdateTaskRequest struct {
	Description *string `json:"description" validate:"omitnil,min=1"`
	Completed   *bool   `json:"completed"`
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} Envelope{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	var req CreateTaskRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError("invalid request body"))
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError(err.Error()))
	}

	task, err := h.tasks.Create(c.Request().Context(), user.ID, service.TaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusCreated, "Task created!", task)
}

// List godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param completed query string false "Only tasks whose completed flag equals (value == \"true\")"
// @Param limit query int false "Maximum number of tasks"
// @Param skip query int false "Number of tasks to skip"
// @Param sort query string false "field:asc|desc on createdAt, updatedAt, description or completed"
// @Success 200 {object} Envelope{data=[]model.Task}
// @Failure 401
// @Failure 500
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	tasks, err := h.tasks.List(c.Request().Context(), parseTaskQuery(c, user.ID))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, "Retrieved tasks", tasks)
}

// parseTaskQuery reads the listing options. Malformed values are ignored
// rather than rejected.
func parseTaskQuery(c echo.Context, ownerID uuid.UUID) model.TaskQuery {
	query := model.TaskQuery{OwnerID: ownerID}

	if value := c.QueryParam("completed"); value != "" {
		completed := value == "true"
		query.Completed = &completed
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		query.Limit = &limit
	}
	if skip, err := strconv.Atoi(c.QueryParam("skip")); err == nil && skip >= 0 {
		query.Skip = &skip
	}
	if sort := c.QueryParam("sort"); sort != "" {
		field, dir, _ := strings.Cut(sort, ":")
		if _, ok := repository.SortColumn(field); ok {
			query.SortField = field
			query.SortDir = model.SortAsc
			if dir == string(model.SortDesc) {
				query.SortDir = model.SortDesc
			}
		}
	}

	return query
}

// Get godoc
// @Summary Get one of the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} Envelope{data=model.Task}
// @Failure 401
// @Failure 404
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, apperrors.ErrNotFound)
	}

	task, err := h.tasks.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, "Task found!", task)
}

// Update godoc
// @Summary Update one of the caller's tasks
// @Description Only description and completed may be sent; any other key rejects the whole update.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Task}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401
// @Failure 404
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	var req UpdateTaskRequest
	if err := decodePatch(c, allowedTaskUpdates, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		req.Description = &description
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError(err.Error()))
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, apperrors.ErrNotFound)
	}

	task, err := h.tasks.Update(c.Request().Context(), id, user.ID, service.TaskPatch{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, "Task updated", task)
}

// Delete godoc
// @Summary Delete one of the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} Envelope{data=model.Task}
// @Failure 401
// @Failure 404
// @Failure 500
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, apperrors.ErrNotFound)
	}

	task, err := h.tasks.Delete(c.Request().Context(), id, user.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, "Task deleted!", task)
}
