package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"tasklist/internal/adapter/http/helper"
	"tasklist/internal/adapter/http/middleware"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/request"
	"tasklist/internal/core/model/response"
	"tasklist/internal/core/port"
	"tasklist/pkg/logger"
	. "tasklist/pkg/tracing"
)

const (
	NextCursorHeader = "X-Next-Cursor"
	MaxPageSize      = 100
)

type TaskHandler struct {
	svc    port.TaskService
	Logger *logger.LokiLogger
}

func NewTaskHandler(svc port.TaskService, log *logger.LokiLogger) *TaskHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &TaskHandler{
		svc:    svc,
		Logger: log,
	}
}

// ListTasks answers with a bare array. With ?limit the page is cut and the
// next page token, if any, goes in X-Next-Cursor.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ownerID, ok := h.identity(c)
	if !ok {
		return
	}

	limit := 0

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)

		if err != nil || parsed <= 0 {
			helper.SendBadRequestError(c, "limit", "A positive integer is required.")
			return
		}

		limit = min(parsed, MaxPageSize)
	}

	cursor := c.Query("cursor")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.task.ListTasks", []attribute.KeyValue{
		attribute.Int("user.id", ownerID),
		attribute.Int("pagination.limit", limit),
		attribute.Bool("pagination.cursor", cursor != ""),
	})
	defer span.End()

	page, err := h.svc.List(ctx, ownerID, limit, cursor)

	if err != nil {
		AddSpanError(span, err)
		helper.SendDomainError(c, h.Logger.Zap(), err)
		return
	}

	if page.NextCursor != "" {
		c.Header(NextCursorHeader, page.NextCursor)
	}

	tasks := make([]response.TaskResponse, 0, len(page.Tasks))

	for _, task := range page.Tasks {
		tasks = append(tasks, toTaskResponse(task))
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	ownerID, ok := h.identity(c)
	if !ok {
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), id, ownerID)

	if err != nil {
		helper.SendDomainError(c, h.Logger.Zap(), err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, ok := h.identity(c)
	if !ok {
		return
	}

	params, ok := bindTaskRequest(c)
	if !ok {
		return
	}

	var name string
	if params.Name != nil {
		name = *params.Name
	}

	completed := params.Completed != nil && *params.Completed

	task, err := h.svc.Create(c.Request.Context(), ownerID, name, completed)

	if err != nil {
		helper.SendDomainError(c, h.Logger.Zap(), err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// ReplaceTask handles PUT. name must be present; completed keeps its value
// when omitted.
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	h.update(c, true)
}

// PatchTask handles PATCH. Absent fields are left untouched.
func (h *TaskHandler) PatchTask(c *gin.Context) {
	h.update(c, false)
}

func (h *TaskHandler) update(c *gin.Context, requireName bool) {
	ownerID, ok := h.identity(c)
	if !ok {
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}

	params, ok := bindTaskRequest(c)
	if !ok {
		return
	}

	if requireName && params.Name == nil {
		helper.SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", []response.ValidationError{
			{Field: "name", Message: "This field is required."},
		})
		return
	}

	task, err := h.svc.Update(c.Request.Context(), id, ownerID, domain.TaskPatch{
		Name:      params.Name,
		Completed: params.Completed,
	})

	if err != nil {
		helper.SendDomainError(c, h.Logger.Zap(), err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, ok := h.identity(c)
	if !ok {
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, ownerID); err != nil {
		helper.SendDomainError(c, h.Logger.Zap(), err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) identity(c *gin.Context) (int, bool) {
	userID, ok := middleware.UserID(c)

	if !ok {
		helper.SendUnauthorizedError(c, "Authentication credentials were not provided.")
	}

	return userID, ok
}

// taskID treats anything but a positive integer as a missing task.
func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))

	if err != nil || id <= 0 {
		helper.SendNotFoundError(c, "Not found.")
		return 0, false
	}

	return id, true
}

// bindTaskRequest decodes name and completed and ignores every other key.
// An empty body is an empty object.
func bindTaskRequest(c *gin.Context) (request.TaskRequest, bool) {
	var params request.TaskRequest

	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return params, true
	}

	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		helper.SendBadRequestError(c, "body", "Malformed JSON or wrong field type.")
		return request.TaskRequest{}, false
	}

	return params, true
}

func toTaskResponse(task domain.Task) response.TaskResponse {
	return response.TaskResponse{
		ID:        task.ID,
		Name:      task.Name,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
		Owner:     task.OwnerID,
	}
}
