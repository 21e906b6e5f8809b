package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"tasklist/internal/adapter/database/postgres"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	tel "tasklist/internal/core/telemetry"
)

const userEntity = "user"

type UserRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *postgres.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (user domain.User, err error) {
	ctx, finish := track(ctx, ur.telemetry, "GetByID", userEntity, "users", map[string]interface{}{"user.id": id})
	defer func() { finish(err) }()

	return ur.getOne(ctx, sq.Eq{"id": id})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (user domain.User, err error) {
	ctx, finish := track(ctx, ur.telemetry, "GetByEmail", userEntity, "users", nil)
	defer func() { finish(err) }()

	return ur.getOne(ctx, sq.Eq{"email": email})
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (saved domain.User, err error) {
	ctx, finish := track(ctx, ur.telemetry, "Create", userEntity, "users", map[string]interface{}{"db.operation": "INSERT"})
	defer func() { finish(err) }()

	if user.Role == "" {
		user.Role = domain.Profile
	}

	stmt, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("uuid", "name", "email", "encrypted_password", "role", "created_at", "updated_at").
		Values(user.UUID, user.Name, user.Email, user.EncryptedPassword, string(user.Role), user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING " + strings.Join(postgres.UserColumns, ", ")).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	saved, err = postgres.ScanUser(ur.db.QueryRow(ctx, stmt, args...))

	if postgres.IsUniqueViolation(err) {
		return domain.User{}, domain.ErrUserAlreadyExists
	}

	return saved, err
}

func (ur *UserRepository) DeleteByID(ctx context.Context, id int) (err error) {
	ctx, finish := track(ctx, ur.telemetry, "DeleteByID", userEntity, "users", map[string]interface{}{
		"db.operation": "DELETE",
		"user.id":      id,
	})
	defer func() { finish(err) }()

	stmt, args, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return err
	}

	tag, err := ur.db.Exec(ctx, stmt, args...)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (ur *UserRepository) getOne(ctx context.Context, where sq.Eq) (domain.User, error) {
	stmt, args, err := ur.db.QueryBuilder.Select(postgres.UserColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	user, err := postgres.ScanUser(ur.db.QueryRow(ctx, stmt, args...))

	return user, postgres.NotFound(err, domain.ErrUserNotFound)
}
