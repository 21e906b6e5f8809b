package util

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordCost is lowered by tests that hash many passwords.
var PasswordCost = bcrypt.DefaultCost

func GenerateEncrypt(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("password longer than %d bytes", MaxPasswordBytes)
	}

	encrypted, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)

	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(encrypted), nil
}

// ComparePassword returns nil when password matches the stored hash.
func ComparePassword(password, encrypted string) error {
	return bcrypt.CompareHashAndPassword([]byte(encrypted), []byte(password))
}
