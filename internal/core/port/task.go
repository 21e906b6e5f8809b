package port

import (
	"context"

	"tasklist/internal/core/domain"
)

type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID int, limit int, after *domain.TaskCursor) ([]domain.Task, bool, error)
	GetByID(ctx context.Context, id int, ownerID int) (domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, id int, ownerID int) error
}

type TaskService interface {
	List(ctx context.Context, ownerID int, limit int, cursor string) (*TaskPage, error)
	Get(ctx context.Context, id int, ownerID int) (domain.Task, error)
	Create(ctx context.Context, ownerID int, name string, completed bool) (domain.Task, error)
	Update(ctx context.Context, id int, ownerID int, patch domain.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, id int, ownerID int) error
}

type TaskPage struct {
	Tasks      []domain.Task
	NextCursor string
}
