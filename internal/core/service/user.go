package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	"tasklist/internal/core/telemetry"
)

type UserService struct {
	repo    port.UserRepository
	cache   port.CacheRepository
	metrics *telemetry.AppMetrics
	logger  *zap.Logger
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo, logger: zap.NewNop()}
}

// WithCache lets account deletion drop the cached task listings of the user.
func (us *UserService) WithCache(cache port.CacheRepository) *UserService {
	us.cache = cache
	return us
}

func (us *UserService) WithMetrics(metrics *telemetry.AppMetrics) *UserService {
	us.metrics = metrics
	return us
}

func (us *UserService) WithLogger(logger *zap.Logger) *UserService {
	if logger != nil {
		us.logger = logger
	}
	return us
}

func (us *UserService) GetUserByID(ctx context.Context, id int) (domain.User, error) {
	return us.repo.GetByID(ctx, id)
}

// DeleteByID removes the account. The store cascades the delete to every task
// owned by the user.
func (us *UserService) DeleteByID(ctx context.Context, id int) error {
	err := us.repo.DeleteByID(ctx, id)

	if us.metrics != nil {
		us.metrics.RecordUserOperation(ctx, "delete", err)
	}

	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	invalidateTaskCache(ctx, us.cache, us.logger, id)

	us.logger.Info("User deleted", zap.Int("user_id", id))

	return nil
}
