package postgres

import (
	"tasklist/internal/core/domain"
)

var (
	TaskColumns = []string{"id", "owner_id", "name", "completed", "created_at"}
	UserColumns = []string{"id", "uuid", "name", "email", "encrypted_password", "role", "created_at", "updated_at"}
)

// RowScanner is satisfied by pgx.Row and pgx.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

func ScanTask(row RowScanner) (domain.Task, error) {
	var task domain.Task

	if err := row.Scan(&task.ID, &task.OwnerID, &task.Name, &task.Completed, &task.CreatedAt); err != nil {
		return domain.Task{}, err
	}

	task.CreatedAt = task.CreatedAt.UTC()

	return task, nil
}

func ScanUser(row RowScanner) (domain.User, error) {
	var user domain.User
	var role string

	if err := row.Scan(&user.ID, &user.UUID, &user.Name, &user.Email, &user.EncryptedPassword, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, err
	}

	user.Role = domain.UserRole(role)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return user, nil
}
