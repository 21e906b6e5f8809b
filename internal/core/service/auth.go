package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/request"
	"tasklist/internal/core/port"
	"tasklist/internal/core/telemetry"
	"tasklist/internal/core/util"
)

type AuthService struct {
	repo    port.UserRepository
	metrics *telemetry.AppMetrics
	logger  *zap.Logger
}

func NewAuthService(repo port.UserRepository) *AuthService {
	return &AuthService{repo: repo, logger: zap.NewNop()}
}

func (as *AuthService) WithMetrics(metrics *telemetry.AppMetrics) *AuthService {
	as.metrics = metrics
	return as
}

func (as *AuthService) WithLogger(logger *zap.Logger) *AuthService {
	if logger != nil {
		as.logger = logger
	}
	return as
}

func (as *AuthService) Registration(ctx context.Context, req *request.SignUpRequest) (user *domain.User, err error) {
	defer func() { as.record(ctx, "signup", err) }()

	email := domain.NormalizeEmail(req.Email)

	_, err = as.repo.GetByEmail(ctx, email)

	if err == nil {
		return nil, domain.ErrUserAlreadyExists
	}

	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	encrypted, err := util.GenerateEncrypt(req.Password)

	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)

	saved, err := as.repo.Create(ctx, domain.User{
		UUID:              uuid.New(),
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		EncryptedPassword: encrypted,
		Role:              domain.Profile,
		CreatedAt:         now,
		UpdatedAt:         now,
	})

	if err != nil {
		return nil, err
	}

	as.logger.Info("User registered", zap.Int("user_id", saved.ID))

	return &saved, nil
}

func (as *AuthService) Authenticate(ctx context.Context, req *request.LoginRequest) (user *domain.User, err error) {
	defer func() { as.record(ctx, "login", err) }()

	found, err := as.repo.GetByEmail(ctx, domain.NormalizeEmail(req.Email))

	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}

		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := util.ComparePassword(req.Password, found.EncryptedPassword); err != nil {
		as.logger.Info("Password mismatch", zap.Int("user_id", found.ID))
		return nil, domain.ErrInvalidCredentials
	}

	return &found, nil
}

func (as *AuthService) record(ctx context.Context, operation string, err error) {
	if as.metrics != nil {
		as.metrics.RecordUserOperation(ctx, operation, err)
	}
}
