package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"tasklist/internal/core/model/response"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
)

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// NewRateLimiter keys signup/auth limits by client IP and task limits by the
// authenticated user. Keys look like "GET /tasks" or "PATCH /tasks/:id".
func NewRateLimiter(limits map[string]config.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	configs := make(map[string]RateLimitEndpointConfig, len(limits))

	for path, limit := range limits {
		keyFunc := GetClientIP
		if strings.Contains(path, "/tasks") || strings.Contains(path, "/me") {
			keyFunc = getUserKey
		}

		configs[path] = RateLimitEndpointConfig{
			Requests: limit.Requests,
			Window:   limit.Window,
			KeyFunc:  keyFunc,
		}
	}

	if _, ok := configs["default"]; !ok {
		configs["default"] = RateLimitEndpointConfig{Requests: 60, Window: time.Minute, KeyFunc: GetClientIP}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := normalizePath(c.FullPath())
		if path == "" {
			path = normalizePath(c.Request.URL.Path)
		}

		methodPath := c.Request.Method + " " + path

		rl.mutex.RLock()
		endpoint, exists := rl.config[methodPath]
		if !exists {
			endpoint = rl.config["default"]
		}
		rl.mutex.RUnlock()

		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, endpoint.KeyFunc(c))

		allowed, remaining, resetTime := rl.checkRateLimit(key, endpoint)

		keyType := "ip"
		if strings.Contains(key, ":user_") {
			keyType = "user"
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(endpoint.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, keyType)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", endpoint.Requests),
				zap.Duration("window", endpoint.Window))

			retryAfter := int(time.Until(resetTime).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{
				Error: response.ResponseError{
					Code: "RATE_LIMITED",
					Errors: []response.ValidationError{{
						Field:   "request",
						Message: fmt.Sprintf("Too many requests. Limit: %d per %v", endpoint.Requests, endpoint.Window),
					}},
					Details: gin.H{"retry_after": retryAfter},
				},
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, keyType)
		}

		c.Next()
	}
}

func (rl *RateLimiter) checkRateLimit(key string, endpoint RateLimitEndpointConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.Before(rateLimitEntry.ResetTime) {
			if rateLimitEntry.Count >= endpoint.Requests {
				return false, 0, rateLimitEntry.ResetTime
			}

			rateLimitEntry.Count++
			rl.cache.Set(key, rateLimitEntry, time.Until(rateLimitEntry.ResetTime))

			return true, endpoint.Requests - rateLimitEntry.Count, rateLimitEntry.ResetTime
		}
	}

	resetTime := now.Add(endpoint.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, endpoint.Window)

	return true, endpoint.Requests - 1, resetTime
}

// normalizePath folds concrete task ids and the optional trailing slash so
// "/tasks/12/" and "/tasks/:id" share one limit.
func normalizePath(path string) string {
	path = strings.TrimSuffix(path, "/")

	if strings.HasPrefix(path, "/tasks/") {
		return "/tasks/:id"
	}

	return path
}

func getUserKey(c *gin.Context) string {
	if userID, ok := UserID(c); ok {
		return fmt.Sprintf("user_%d", userID)
	}

	return GetClientIP(c)
}

func GetClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	ip := c.ClientIP()

	if ip == "" {
		return "unknown"
	}

	return ip
}
