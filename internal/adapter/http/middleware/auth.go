package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasklist/internal/adapter/http/helper"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	"tasklist/pkg/auth"
)

const currentUserKey = "current_user"

// JwtAuthMiddleware accepts "Authorization: Bearer <token>", checks the token
// and that its user still exists. The user id is then available through
// UserID.
func JwtAuthMiddleware(jwt *auth.JWT, users port.UserService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")

		if bearer == "" {
			helper.SendUnauthorizedError(c, "Authentication credentials were not provided.")
			return
		}

		scheme, token, found := strings.Cut(bearer, " ")

		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			helper.SendUnauthorizedError(c, "Invalid authorization header format.")
			return
		}

		userID, err := jwt.VerifyToken(strings.TrimSpace(token))

		if err != nil {
			logger.Info("Rejected access token", zap.Error(err))
			helper.SendUnauthorizedError(c, "Invalid or expired token.")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)

		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				helper.SendUnauthorizedError(c, "User not found.")
				return
			}

			helper.SendDomainError(c, logger, err)
			return
		}

		GetCurrent(c).SetUserID(user.ID)

		c.Set(userIDKey, user.ID)
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by JwtAuthMiddleware.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	value, exists := c.Get(currentUserKey)

	if !exists {
		return domain.User{}, false
	}

	user, ok := value.(domain.User)

	return user, ok
}
