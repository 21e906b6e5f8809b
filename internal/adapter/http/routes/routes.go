package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"tasklist/internal/adapter/http/handler"
	"tasklist/internal/adapter/http/middleware"
	"tasklist/internal/core/port"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/auth"
	"tasklist/pkg/config"
	"tasklist/pkg/logger"
)

type HandlersConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	TaskHandler   *handler.TaskHandler
	HealthHandler *handler.HealthHandler

	JWT   *auth.JWT
	Users port.UserService
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, log *logger.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()

	// Both spellings of every path are registered below.
	router.RedirectTrailingSlash = false

	router.Use(gin.Recovery())
	router.Use(middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, log.Zap()).HTTPSMiddleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}

	router.Use(corsMiddleware())

	var limiter gin.HandlerFunc

	if cfg.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimitConfigs, log.Zap(), metrics).RateLimitMiddleware()
	}

	setupPublicRoutes(router, handlers, limiter)
	setupProtectedRoutes(router, handlers, limiter)

	return router
}

func setupPublicRoutes(router *gin.Engine, handlers HandlersConfig, limiter gin.HandlerFunc) {
	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
	}

	if handlers.AuthHandler == nil {
		return
	}

	public := router.Group("/")
	if limiter != nil {
		public.Use(limiter)
	}
	{
		public.POST("/signup", handlers.AuthHandler.RegisterByEmailAndPassword)
		public.POST("/auth", handlers.AuthHandler.AuthByEmailAndPassword)
	}
}

func setupProtectedRoutes(router *gin.Engine, handlers HandlersConfig, limiter gin.HandlerFunc) {
	if handlers.JWT == nil || handlers.Users == nil {
		return
	}

	protected := router.Group("/")
	protected.Use(middleware.JwtAuthMiddleware(handlers.JWT, handlers.Users, nil))

	// Runs after authentication so that limits are keyed by user.
	if limiter != nil {
		protected.Use(limiter)
	}

	if users := handlers.UserHandler; users != nil {
		protected.GET("/me", users.Me)
		protected.DELETE("/me", users.DeleteMe)
	}

	if tasks := handlers.TaskHandler; tasks != nil {
		for _, path := range []string{"/tasks", "/tasks/"} {
			protected.GET(path, tasks.ListTasks)
			protected.POST(path, tasks.CreateTask)
		}

		for _, path := range []string{"/tasks/:id", "/tasks/:id/"} {
			protected.GET(path, tasks.GetTask)
			protected.PUT(path, tasks.ReplaceTask)
			protected.PATCH(path, tasks.PatchTask)
			protected.DELETE(path, tasks.DeleteTask)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Next-Cursor, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
