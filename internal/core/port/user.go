package port

import (
	"context"

	"tasklist/internal/core/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	DeleteByID(ctx context.Context, id int) error
}

type UserService interface {
	GetUserByID(ctx context.Context, id int) (domain.User, error)
	DeleteByID(ctx context.Context, id int) error
}
