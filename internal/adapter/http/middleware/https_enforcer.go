package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPSEnforcer redirects plain HTTP requests to their HTTPS equivalent.
type HTTPSEnforcer struct {
	enabled bool
	logger  *zap.Logger
}

func NewHTTPSEnforcer(enabled bool, logger *zap.Logger) *HTTPSEnforcer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPSEnforcer{enabled: enabled, logger: logger}
}

func (he *HTTPSEnforcer) HTTPSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !he.enabled || isSecure(c.Request) || isLoopback(c.Request.Host) {
			c.Next()
			return
		}

		target := "https://" + c.Request.Host + c.Request.URL.RequestURI()

		// 308 keeps the method and body of writes.
		status := http.StatusMovedPermanently
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			status = http.StatusPermanentRedirect
		}

		he.logger.Debug("redirecting to https",
			zap.String("method", c.Request.Method),
			zap.String("target", target))

		c.Redirect(status, target)
		c.Abort()
	}
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

func isLoopback(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
