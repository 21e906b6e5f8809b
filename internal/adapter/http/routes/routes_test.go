package routes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"tasklist/internal/adapter/cache/noop"
	"tasklist/internal/adapter/database/sqlite"
	"tasklist/internal/adapter/database/sqlite/repository"
	"tasklist/internal/adapter/http/handler"
	"tasklist/internal/adapter/http/validation"
	"tasklist/internal/core/service"
	"tasklist/internal/core/telemetry"
	"tasklist/internal/core/util"
	"tasklist/pkg/auth"
	"tasklist/pkg/config"
	. "tasklist/pkg/test"
)

type RoutesSuite struct {
	suite.Suite
	DB     *sqlite.DB
	JWT    *auth.JWT
	Config *config.AppConfig
	Router *gin.Engine
}

func (s *RoutesSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.DB = InitTestDB()
	s.JWT = &auth.JWT{Secret: "routes-test", TTL: time.Hour}
	s.Config = config.GetDefaultConfig()
	s.Config.RateLimitConfigs["POST /signup"] = config.RateLimitConfig{Requests: 2, Window: time.Minute}
	s.Config.RateLimitConfigs["GET /tasks"] = config.RateLimitConfig{Requests: 3, Window: time.Minute}

	s.Router = s.build()
}

func (s *RoutesSuite) TearDownTest() {
	s.DB.Close()
}

func TestRoutesSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) build() *gin.Engine {
	probe := telemetry.NewNoOpProbe()
	validator := validation.New()

	userRepo := repository.NewUserRepository(s.DB, probe)
	taskRepo := repository.NewTaskRepository(s.DB, probe)

	users := service.NewUserService(userRepo)
	tasks := service.NewTaskService(taskRepo, validator, util.NewCursorCodec("routes-test"), probe).
		WithCache(noop.NewCacheRepository(), time.Minute)

	return SetupRouterWithConfig(HandlersConfig{
		AuthHandler:   handler.NewAuthHandler(service.NewAuthService(userRepo), s.JWT, validator, nil),
		UserHandler:   handler.NewUserHandler(users, nil),
		TaskHandler:   handler.NewTaskHandler(tasks, nil),
		HealthHandler: handler.NewHealthHandler(s.DB.PingContext, s.Config.ServiceName),
		JWT:           s.JWT,
		Users:         users,
	}, telemetry.NewAppMetrics(prometheus.NewRegistry()), nil, s.Config)
}

func (s *RoutesSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func (s *RoutesSuite) signupAndLogin(email string) string {
	Expect(s.do("POST", "/signup", "", fmt.Sprintf(`{"email": %q, "password": "12345678"}`, email)).Code).To(Equal(http.StatusCreated))

	rr := s.do("POST", "/auth", "", fmt.Sprintf(`{"email": %q, "password": "12345678"}`, email))
	Expect(rr.Code).To(Equal(http.StatusOK))

	var body struct {
		AccessToken string `json:"access_token"`
	}
	Expect(decode(rr, &body)).To(Succeed())

	return body.AccessToken
}

func (s *RoutesSuite) TestTrailingSlashIsOptional() {
	token := s.signupAndLogin("slash@test.com")

	rr := s.do("POST", "/tasks", token, `{"name": "Buy milk"}`)
	Expect(rr.Code).To(Equal(http.StatusCreated))

	var created struct {
		ID int `json:"id"`
	}
	Expect(decode(rr, &created)).To(Succeed())

	for _, path := range []string{"/tasks", "/tasks/", fmt.Sprintf("/tasks/%d", created.ID), fmt.Sprintf("/tasks/%d/", created.ID)} {
		Expect(s.do("GET", path, token, "").Code).To(Equal(http.StatusOK), path)
	}
}

func (s *RoutesSuite) TestProtectedRoutesNeedToken() {
	for _, route := range [][2]string{{"GET", "/tasks/"}, {"POST", "/tasks/"}, {"GET", "/tasks/1/"}, {"DELETE", "/tasks/1/"}, {"GET", "/me"}} {
		Expect(s.do(route[0], route[1], "", "{}").Code).To(Equal(http.StatusUnauthorized), route[1])
	}
}

func (s *RoutesSuite) TestSignupIsRateLimitedByIP() {
	Expect(s.do("POST", "/signup", "", `{"email": "a@test.com", "password": "12345678"}`).Code).To(Equal(http.StatusCreated))
	Expect(s.do("POST", "/signup", "", `{"email": "b@test.com", "password": "12345678"}`).Code).To(Equal(http.StatusCreated))

	rr := s.do("POST", "/signup", "", `{"email": "c@test.com", "password": "12345678"}`)

	Expect(rr.Code).To(Equal(http.StatusTooManyRequests))
	Expect(rr.Header().Get("Retry-After")).NotTo(BeEmpty())
}

func (s *RoutesSuite) TestTaskListIsRateLimitedPerUser() {
	s.Config.RateLimitConfigs["POST /signup"] = config.RateLimitConfig{Requests: 10, Window: time.Minute}
	s.Router = s.build()

	alice := s.signupAndLogin("alice@test.com")
	bob := s.signupAndLogin("bob@test.com")

	for i := 0; i < 3; i++ {
		Expect(s.do("GET", "/tasks/", alice, "").Code).To(Equal(http.StatusOK))
	}

	Expect(s.do("GET", "/tasks", alice, "").Code).To(Equal(http.StatusTooManyRequests))
	Expect(s.do("GET", "/tasks/", bob, "").Code).To(Equal(http.StatusOK))
}

func (s *RoutesSuite) TestHealthAndCORS() {
	rr := s.do("GET", "/health", "", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))

	rr = s.do("OPTIONS", "/tasks/", "", "")
	Expect(rr.Code).To(Equal(http.StatusNoContent))
}

func (s *RoutesSuite) TestUnknownRoute() {
	Expect(s.do("GET", "/projects", "", "").Code).To(Equal(http.StatusNotFound))
}
