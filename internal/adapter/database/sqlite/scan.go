package sqlite

import (
	"tasklist/internal/core/domain"
)

var (
	TaskColumns = []string{"id", "owner_id", "name", "completed", "created_at"}
	UserColumns = []string{"id", "uuid", "name", "email", "encrypted_password", "role", "created_at", "updated_at"}
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanTask reads a row selected with TaskColumns.
func ScanTask(row RowScanner) (domain.Task, error) {
	var task domain.Task

	err := row.Scan(&task.ID, &task.OwnerID, &task.Name, &task.Completed, &task.CreatedAt)

	if err != nil {
		return domain.Task{}, err
	}

	task.CreatedAt = task.CreatedAt.UTC()

	return task, nil
}

// ScanUser reads a row selected with UserColumns.
func ScanUser(row RowScanner) (domain.User, error) {
	var user domain.User
	var role string

	err := row.Scan(&user.ID, &user.UUID, &user.Name, &user.Email, &user.EncryptedPassword, &role, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return domain.User{}, err
	}

	user.Role = domain.UserRole(role)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return user, nil
}
