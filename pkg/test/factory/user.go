package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tasklist/internal/core/domain"
)

const DefaultPassword = "12345678"

// NewUser builds a user with fabricated fields and the default password,
// then applies any overrides.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	data := merge(customData...)

	if _, exists := data["EncryptedPassword"]; !exists {
		encryptedPassword, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		data["EncryptedPassword"] = string(encryptedPassword)
	}

	return instance.Build(data)
}

// NewDomainUser is NewUser for domain.User with the fields the store needs
// filled in.
func NewDomainUser(customData ...map[string]any) domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)

	defaults := map[string]any{
		"ID":        0,
		"UUID":      uuid.New(),
		"Email":     uuid.NewString() + "@example.com",
		"Role":      domain.Profile,
		"CreatedAt": now,
		"UpdatedAt": now,
	}

	return NewUser[domain.User](append([]map[string]any{defaults}, customData...)...)
}
