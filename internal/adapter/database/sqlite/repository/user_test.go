package repository_test

import (
	"context"
	"testing"

	. "tasklist/pkg/test"
	"tasklist/pkg/test/factory"

	"tasklist/internal/adapter/database/sqlite/repository"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	repo port.UserRepository
}

func (s *UserRepositoryTestSuite) SetupTest() {
	s.repo = repository.NewUserRepository(InitTestDB(), nil)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) TestRepository_CreateUser_Success() {
	user, err := s.repo.Create(context.Background(), factory.NewDomainUser(map[string]any{
		"Name":  "Test User",
		"Email": "test@example.com",
	}))

	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), user.ID)
	assert.NotEmpty(s.T(), user.UUID)
	assert.Equal(s.T(), "Test User", user.Name)
	assert.Equal(s.T(), "test@example.com", user.Email)
	assert.Equal(s.T(), domain.Profile, user.Role)
}

func (s *UserRepositoryTestSuite) TestRepository_CreateUser_DuplicateEmail() {
	ctx := context.Background()

	_, err := s.repo.Create(ctx, factory.NewDomainUser(map[string]any{"Email": "dup@example.com"}))
	assert.NoError(s.T(), err)

	_, err = s.repo.Create(ctx, factory.NewDomainUser(map[string]any{"Email": "dup@example.com"}))

	Expect(err).To(MatchError(domain.ErrUserAlreadyExists))
}

func (s *UserRepositoryTestSuite) TestRepository_GetByEmail_Success() {
	ctx := context.Background()

	created, _ := s.repo.Create(ctx, factory.NewDomainUser(map[string]any{"Email": "find@example.com"}))

	user, err := s.repo.GetByEmail(ctx, "find@example.com")

	Expect(err).To(BeNil())
	Expect(user.ID).To(Equal(created.ID))
	Expect(user.EncryptedPassword).NotTo(BeEmpty())
}

func (s *UserRepositoryTestSuite) TestRepository_GetByEmail_NotFound() {
	_, err := s.repo.GetByEmail(context.Background(), "nobody@example.com")

	Expect(err).To(MatchError(domain.ErrUserNotFound))
}

func (s *UserRepositoryTestSuite) TestRepository_DeleteByID_Success() {
	ctx := context.Background()

	user, _ := s.repo.Create(ctx, factory.NewDomainUser())

	err := s.repo.DeleteByID(ctx, user.ID)
	assert.NoError(s.T(), err)

	_, err = s.repo.GetByID(ctx, user.ID)
	Expect(err).To(MatchError(domain.ErrUserNotFound))

	err = s.repo.DeleteByID(ctx, user.ID)
	Expect(err).To(MatchError(domain.ErrUserNotFound))
}
