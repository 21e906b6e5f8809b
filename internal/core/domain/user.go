package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	Admin   UserRole = "admin"
	Profile UserRole = "profile"
)

// User owns tasks. Deleting it deletes them.
type User struct {
	ID                int
	UUID              uuid.UUID
	Name              string `validate:"max=100"`
	Email             string `validate:"required,email,max=255"`
	EncryptedPassword string `validate:"required"`
	Role              UserRole
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == Admin
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
