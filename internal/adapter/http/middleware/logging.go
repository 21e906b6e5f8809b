package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasklist/pkg/logger"
)

func LoggingMiddleware(log *logger.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		current := GetCurrent(c)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", current.RequestID()),
		}

		if userID, ok := current.UserID(); ok {
			fields = append(fields, zap.Int("user_id", userID))
		}

		if c.Writer.Status() >= 500 {
			log.ErrorWithTrace(c.Request.Context(), "HTTP Request", fields...)
			return
		}

		log.InfoWithTrace(c.Request.Context(), "HTTP Request", fields...)
	}
}
