package repository_test

import (
	"context"
	"testing"
	"time"

	. "tasklist/pkg/test"
	"tasklist/pkg/test/factory"

	"tasklist/internal/adapter/database/sqlite"
	"tasklist/internal/adapter/database/sqlite/repository"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	DB       *sqlite.DB
	TaskRepo port.TaskRepository
	UserRepo port.UserRepository
	Owner    domain.User
	Other    domain.User
}

func (s *TaskRepositoryTestSuite) SetupTest() {
	s.DB = InitTestDB()

	s.TaskRepo = repository.NewTaskRepository(s.DB, nil)
	s.UserRepo = repository.NewUserRepository(s.DB, nil)

	s.Owner, _ = s.UserRepo.Create(context.Background(), factory.NewDomainUser(map[string]any{"Email": "owner@example.com"}))
	s.Other, _ = s.UserRepo.Create(context.Background(), factory.NewDomainUser(map[string]any{"Email": "other@example.com"}))
}

func (s *TaskRepositoryTestSuite) TearDownTest() {
	s.DB.Close()
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func (s *TaskRepositoryTestSuite) createAt(owner domain.User, name string, createdAt time.Time) domain.Task {
	task, err := s.TaskRepo.Create(context.Background(), factory.NewDomainTask(owner.ID, map[string]any{
		"Name":      name,
		"CreatedAt": createdAt,
	}))

	s.Require().NoError(err)

	return task
}

func (s *TaskRepositoryTestSuite) TestRepository_ListByOwner_Empty() {
	tasks, hasNext, err := s.TaskRepo.ListByOwner(context.Background(), s.Owner.ID, 0, nil)

	Expect(err).To(BeNil())
	Expect(tasks).To(BeEmpty())
	Expect(hasNext).To(BeFalse())
}

func (s *TaskRepositoryTestSuite) TestRepository_Create_Success() {
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)

	task := s.createAt(s.Owner, "Buy milk", createdAt)

	Expect(task.ID).To(BeNumerically(">", 0))
	Expect(task.Name).To(Equal("Buy milk"))
	Expect(task.Completed).To(BeFalse())
	Expect(task.OwnerID).To(Equal(s.Owner.ID))
	Expect(task.CreatedAt.Equal(createdAt)).To(BeTrue())
}

func (s *TaskRepositoryTestSuite) TestRepository_Create_UnknownOwner() {
	_, err := s.TaskRepo.Create(context.Background(), factory.NewDomainTask(999999))

	assert.Error(s.T(), err)
}

func (s *TaskRepositoryTestSuite) TestRepository_ListByOwner_NewestFirst() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s.createAt(s.Owner, "first", base)
	s.createAt(s.Owner, "third", base.Add(2*time.Hour))
	s.createAt(s.Owner, "second", base.Add(time.Hour))
	s.createAt(s.Other, "someone else", base.Add(3*time.Hour))

	tasks, hasNext, err := s.TaskRepo.ListByOwner(context.Background(), s.Owner.ID, 0, nil)

	Expect(err).To(BeNil())
	Expect(hasNext).To(BeFalse())
	Expect(tasks).To(HaveLen(3))
	Expect([]string{tasks[0].Name, tasks[1].Name, tasks[2].Name}).To(Equal([]string{"third", "second", "first"}))
}

func (s *TaskRepositoryTestSuite) TestRepository_ListByOwner_SameTimestampUsesID() {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	older := s.createAt(s.Owner, "older", at)
	newer := s.createAt(s.Owner, "newer", at)

	tasks, _, err := s.TaskRepo.ListByOwner(context.Background(), s.Owner.ID, 0, nil)

	Expect(err).To(BeNil())
	Expect(tasks[0].ID).To(Equal(newer.ID))
	Expect(tasks[1].ID).To(Equal(older.ID))
}

func (s *TaskRepositoryTestSuite) TestRepository_ListByOwner_Keyset() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.createAt(s.Owner, "task", base.Add(time.Duration(i)*time.Minute))
	}

	ctx := context.Background()

	firstPage, hasNext, err := s.TaskRepo.ListByOwner(ctx, s.Owner.ID, 2, nil)

	Expect(err).To(BeNil())
	Expect(firstPage).To(HaveLen(2))
	Expect(hasNext).To(BeTrue())

	last := firstPage[1]

	secondPage, hasNext, err := s.TaskRepo.ListByOwner(ctx, s.Owner.ID, 2, &domain.TaskCursor{CreatedAt: last.CreatedAt, ID: last.ID})

	Expect(err).To(BeNil())
	Expect(secondPage).To(HaveLen(2))
	Expect(hasNext).To(BeTrue())
	Expect(secondPage[0].CreatedAt.Before(last.CreatedAt)).To(BeTrue())

	last = secondPage[1]

	thirdPage, hasNext, err := s.TaskRepo.ListByOwner(ctx, s.Owner.ID, 2, &domain.TaskCursor{CreatedAt: last.CreatedAt, ID: last.ID})

	Expect(err).To(BeNil())
	Expect(thirdPage).To(HaveLen(1))
	Expect(hasNext).To(BeFalse())
	Expect(thirdPage[0].CreatedAt.Equal(base)).To(BeTrue())
}

func (s *TaskRepositoryTestSuite) TestRepository_GetByID_OtherOwner() {
	task := s.createAt(s.Owner, "private", time.Now().UTC())

	_, err := s.TaskRepo.GetByID(context.Background(), task.ID, s.Other.ID)

	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	found, err := s.TaskRepo.GetByID(context.Background(), task.ID, s.Owner.ID)

	Expect(err).To(BeNil())
	Expect(found.Name).To(Equal("private"))
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_Success() {
	createdAt := time.Date(2024, 2, 2, 8, 30, 0, 0, time.UTC)
	task := s.createAt(s.Owner, "Buy milk", createdAt)

	task.Name = "Buy oat milk"
	task.Completed = true
	task.CreatedAt = time.Now().UTC()

	updated, err := s.TaskRepo.Update(context.Background(), task)

	Expect(err).To(BeNil())
	Expect(updated.Name).To(Equal("Buy oat milk"))
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.CreatedAt.Equal(createdAt)).To(BeTrue())
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_OtherOwner() {
	task := s.createAt(s.Owner, "Buy milk", time.Now().UTC())

	task.OwnerID = s.Other.ID
	task.Name = "hijacked"

	_, err := s.TaskRepo.Update(context.Background(), task)

	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	found, _ := s.TaskRepo.GetByID(context.Background(), task.ID, s.Owner.ID)
	Expect(found.Name).To(Equal("Buy milk"))
}

func (s *TaskRepositoryTestSuite) TestRepository_Delete_Success() {
	task := s.createAt(s.Owner, "Buy milk", time.Now().UTC())

	err := s.TaskRepo.Delete(context.Background(), task.ID, s.Owner.ID)
	assert.NoError(s.T(), err)

	_, err = s.TaskRepo.GetByID(context.Background(), task.ID, s.Owner.ID)
	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	err = s.TaskRepo.Delete(context.Background(), task.ID, s.Owner.ID)
	Expect(err).To(MatchError(domain.ErrTaskNotFound))
}

func (s *TaskRepositoryTestSuite) TestRepository_Delete_OtherOwner() {
	task := s.createAt(s.Owner, "Buy milk", time.Now().UTC())

	err := s.TaskRepo.Delete(context.Background(), task.ID, s.Other.ID)
	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	_, err = s.TaskRepo.GetByID(context.Background(), task.ID, s.Owner.ID)
	Expect(err).To(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_DeleteOwner_CascadesTasks() {
	ctx := context.Background()

	s.createAt(s.Owner, "one", time.Now().UTC())
	s.createAt(s.Owner, "two", time.Now().UTC())
	s.createAt(s.Other, "kept", time.Now().UTC())

	err := s.UserRepo.DeleteByID(ctx, s.Owner.ID)
	assert.NoError(s.T(), err)

	var remaining int
	err = s.DB.QueryRow("SELECT COUNT(*) FROM tasks WHERE owner_id = ?", s.Owner.ID).Scan(&remaining)

	Expect(err).To(BeNil())
	Expect(remaining).To(Equal(0))

	others, _, err := s.TaskRepo.ListByOwner(ctx, s.Other.ID, 0, nil)

	Expect(err).To(BeNil())
	Expect(others).To(HaveLen(1))
}
