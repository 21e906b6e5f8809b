package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"tasklist/internal/adapter/cache/memory"
	"tasklist/internal/adapter/database/sqlite"
	"tasklist/internal/adapter/database/sqlite/repository"
	"tasklist/internal/adapter/http/middleware"
	"tasklist/internal/adapter/http/validation"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/response"
	"tasklist/internal/core/port"
	"tasklist/internal/core/service"
	"tasklist/internal/core/telemetry"
	"tasklist/internal/core/util"
	"tasklist/pkg/auth"
	. "tasklist/pkg/test"
	"tasklist/pkg/test/factory"
)

const testSecret = "handler-test-secret"

// testApp is the full task API on an in-memory database.
type testApp struct {
	DB       *sqlite.DB
	Router   *gin.Engine
	JWT      *auth.JWT
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository
	Cache    port.CacheRepository
}

func newTestApp() *testApp {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	probe := telemetry.NewNoOpProbe()
	validator := validation.New()
	cache := memory.NewCacheRepository(time.Minute)
	jwt := &auth.JWT{Secret: testSecret, TTL: time.Hour}

	userRepo := repository.NewUserRepository(db, probe)
	taskRepo := repository.NewTaskRepository(db, probe)

	taskService := service.NewTaskService(taskRepo, validator, util.NewCursorCodec(testSecret), probe).
		WithCache(cache, time.Minute)
	userService := service.NewUserService(userRepo).WithCache(cache)
	authService := service.NewAuthService(userRepo)

	tasks := NewTaskHandler(taskService, nil)
	users := NewUserHandler(userService, nil)
	auths := NewAuthHandler(authService, jwt, validator, nil)
	health := NewHealthHandler(db.PingContext, "tasklist-test")

	router := gin.New()
	router.Use(middleware.CurrentMiddleware())

	router.GET("/health", health.Health)
	router.POST("/signup", auths.RegisterByEmailAndPassword)
	router.POST("/auth", auths.AuthByEmailAndPassword)

	protected := router.Group("/")
	protected.Use(middleware.JwtAuthMiddleware(jwt, userService, nil))
	{
		protected.GET("/me", users.Me)
		protected.DELETE("/me", users.DeleteMe)

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

	router.RedirectTrailingSlash = false

	return &testApp{
		DB:       db,
		Router:   router,
		JWT:      jwt,
		UserRepo: userRepo,
		TaskRepo: taskRepo,
		Cache:    cache,
	}
}

func (a *testApp) Close() {
	_ = a.Cache.Close()
	_ = a.DB.Close()
}

func (a *testApp) CreateUser() (domain.User, string) {
	user, err := a.UserRepo.Create(context.Background(), factory.NewDomainUser())
	Expect(err).NotTo(HaveOccurred())

	token, err := a.JWT.CreateToken(user.ID)
	Expect(err).NotTo(HaveOccurred())

	return user, token
}

func (a *testApp) CreateTask(ownerID int, customData ...map[string]any) domain.Task {
	task, err := a.TaskRepo.Create(context.Background(), factory.NewDomainTask(ownerID, customData...))
	Expect(err).NotTo(HaveOccurred())

	return task
}

func (a *testApp) Do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, _ := http.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)

	return rr
}

func decodeError(rr *httptest.ResponseRecorder) response.ErrorResponse {
	var body response.ErrorResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	return body
}
