package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/response"
)

type UserHandlerSuite struct {
	suite.Suite
	App *testApp
}

func (s *UserHandlerSuite) SetupTest() {
	s.App = newTestApp()
}

func (s *UserHandlerSuite) TearDownTest() {
	s.App.Close()
}

func TestUserHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) TestMe() {
	user, token := s.App.CreateUser()

	rr := s.App.Do("GET", "/me", token, "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	var body struct {
		Data response.UserResponse `json:"data"`
	}

	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Data.ID).To(Equal(user.ID))
	Expect(body.Data.Email).To(Equal(user.Email))
}

func (s *UserHandlerSuite) TestMeRequiresToken() {
	Expect(s.App.Do("GET", "/me", "", "").Code).To(Equal(http.StatusUnauthorized))
}

func (s *UserHandlerSuite) TestDeleteMeCascadesTasks() {
	user, token := s.App.CreateUser()
	other, otherToken := s.App.CreateUser()

	task := s.App.CreateTask(user.ID)
	s.App.CreateTask(other.ID)

	// Warm the list cache so the delete has something to invalidate.
	Expect(decodeTasks(s.App.Do("GET", "/tasks/", token, "").Body.Bytes())).To(HaveLen(1))

	key := fmt.Sprintf("tasks:%d:0:0:", user.ID)
	warm, err := s.App.Cache.Get(s.T().Context(), key)
	Expect(err).NotTo(HaveOccurred())
	Expect(warm).NotTo(BeNil())

	rr := s.App.Do("DELETE", "/me", token, "")

	Expect(rr.Code).To(Equal(http.StatusNoContent))

	_, err = s.App.UserRepo.GetByID(s.T().Context(), user.ID)
	Expect(err).To(MatchError(domain.ErrUserNotFound))

	_, err = s.App.TaskRepo.GetByID(s.T().Context(), task.ID, user.ID)
	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	cached, err := s.App.Cache.Get(s.T().Context(), key)
	Expect(err).NotTo(HaveOccurred())
	Expect(cached).To(BeNil())

	// The old token no longer authenticates anyone.
	Expect(s.App.Do("GET", "/tasks/", token, "").Code).To(Equal(http.StatusUnauthorized))

	otherTasks := decodeTasks(s.App.Do("GET", "/tasks/", otherToken, "").Body.Bytes())
	Expect(otherTasks).To(HaveLen(1))
}
