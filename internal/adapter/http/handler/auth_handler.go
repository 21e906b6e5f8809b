package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	. "tasklist/internal/adapter/http/helper"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/request"
	"tasklist/internal/core/model/response"
	"tasklist/internal/core/port"
	"tasklist/pkg/auth"
	"tasklist/pkg/logger"
)

type AuthHandler struct {
	svc       port.AuthService
	jwt       *auth.JWT
	validator port.Validator
	Logger    *logger.LokiLogger
}

func NewAuthHandler(svc port.AuthService, jwt *auth.JWT, validator port.Validator, log *logger.LokiLogger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &AuthHandler{
		svc:       svc,
		jwt:       jwt,
		validator: validator,
		Logger:    log,
	}
}

func (a *AuthHandler) RegisterByEmailAndPassword(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.SignUpRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := a.validator.ValidateStruct(params); err != nil {
		SendDomainError(c, a.Logger.Zap(), err)
		return
	}

	user, err := a.svc.Registration(ctx, &params)

	if err != nil {
		SendDomainError(c, a.Logger.Zap(), err)
		return
	}

	a.Logger.InfoWithTrace(ctx, "User registered", zap.Int("user.id", user.ID))

	SendSuccess(c, http.StatusCreated, toUserResponse(*user))
}

func (a *AuthHandler) AuthByEmailAndPassword(c *gin.Context) {
	ctx := c.Request.Context()

	var params request.LoginRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := a.validator.ValidateStruct(params); err != nil {
		SendDomainError(c, a.Logger.Zap(), err)
		return
	}

	user, err := a.svc.Authenticate(ctx, &params)

	if err != nil {
		SendDomainError(c, a.Logger.Zap(), err)
		return
	}

	accessToken, err := a.jwt.CreateToken(user.ID)

	if err != nil {
		a.Logger.ErrorWithTrace(ctx, "Failed to sign access token", zap.Error(err))
		SendInternalError(c, "Failed to generate access token")
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   a.jwt.ExpiresIn(),
	})
}

func toUserResponse(user domain.User) response.UserResponse {
	return response.UserResponse{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
