package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	. "tasklist/internal/adapter/http/helper"
	"tasklist/internal/adapter/http/middleware"
	"tasklist/internal/core/port"
	"tasklist/pkg/logger"
)

type UserHandler struct {
	svc    port.UserService
	Logger *logger.LokiLogger
}

func NewUserHandler(svc port.UserService, log *logger.LokiLogger) *UserHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &UserHandler{
		svc:    svc,
		Logger: log,
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)

	if !ok {
		SendUnauthorizedError(c, "Authentication credentials were not provided.")
		return
	}

	SendSuccess(c, http.StatusOK, toUserResponse(user))
}

// DeleteMe removes the caller's account. Their tasks go with it.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := middleware.UserID(c)

	if !ok {
		SendUnauthorizedError(c, "Authentication credentials were not provided.")
		return
	}

	if err := h.svc.DeleteByID(ctx, userID); err != nil {
		SendDomainError(c, h.Logger.Zap(), err)
		return
	}

	h.Logger.InfoWithTrace(ctx, "User deleted", zap.Int("user.id", userID))

	c.Status(http.StatusNoContent)
}
