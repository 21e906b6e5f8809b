package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"tasklist/internal/adapter/database/sqlite"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	tel "tasklist/internal/core/telemetry"
)

const userEntity = "user"

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) GetByID(ctx context.Context, id int) (user domain.User, err error) {
	ctx, finish := ur.track(ctx, "GetByID", map[string]interface{}{"user.id": id})
	defer func() { finish(err) }()

	return ur.getOne(ctx, sq.Eq{"id": id})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (user domain.User, err error) {
	ctx, finish := ur.track(ctx, "GetByEmail", nil)
	defer func() { finish(err) }()

	return ur.getOne(ctx, sq.Eq{"email": email})
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (saved domain.User, err error) {
	ctx, finish := ur.track(ctx, "Create", map[string]interface{}{"db.operation": "INSERT"})
	defer func() { finish(err) }()

	if user.Role == "" {
		user.Role = domain.Profile
	}

	stmt, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("uuid", "name", "email", "encrypted_password", "role", "created_at", "updated_at").
		Values(user.UUID.String(), user.Name, user.Email, user.EncryptedPassword, string(user.Role), user.CreatedAt.UTC(), user.UpdatedAt.UTC()).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return domain.User{}, domain.ErrUserAlreadyExists
		}

		return domain.User{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.User{}, err
	}

	return ur.getOne(ctx, sq.Eq{"id": int(id)})
}

// DeleteByID removes the user. Their tasks go with them through the
// ON DELETE CASCADE foreign key.
func (ur *UserRepository) DeleteByID(ctx context.Context, id int) (err error) {
	ctx, finish := ur.track(ctx, "DeleteByID", map[string]interface{}{
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

	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (ur *UserRepository) getOne(ctx context.Context, where sq.Eq) (domain.User, error) {
	stmt, args, err := ur.db.QueryBuilder.Select(sqlite.UserColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	user, err := sqlite.ScanUser(ur.db.QueryRowContext(ctx, stmt, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}

	return user, err
}

func (ur *UserRepository) track(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, func(error)) {
	return track(ctx, ur.telemetry, operation, userEntity, "users", attrs)
}
