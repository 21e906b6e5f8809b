package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasklist/internal/adapter/http/validation"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.FormatValidationErrors(err))
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "auth",
			Message: message,
		},
	}

	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", errors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

// SendDomainError maps an error returned by a service to its HTTP status.
// Anything unrecognised is logged and answered with a generic 500 so store
// details never reach the client.
func SendDomainError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case validation.IsValidationError(err):
		SendValidationError(c, err)
	case errors.Is(err, domain.ErrTaskNotFound):
		SendNotFoundError(c, "Not found.")
	case errors.Is(err, domain.ErrUserNotFound):
		SendNotFoundError(c, "Not found.")
	case errors.Is(err, domain.ErrInvalidCursor):
		SendBadRequestError(c, "cursor", "Invalid cursor.")
	case errors.Is(err, domain.ErrUserAlreadyExists):
		SendBadRequestError(c, "email", "A user with this email already exists.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		SendUnauthorizedError(c, "Invalid email or password.")
	default:
		if logger != nil {
			logger.Error("Unhandled error",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
			)
		}

		SendInternalError(c, "Internal server error.")
	}
}
