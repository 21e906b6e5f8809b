package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 3 * time.Hour

var ErrInvalidToken = errors.New("invalid access token")

type JWT struct {
	Secret string
	TTL    time.Duration
}

func (j *JWT) ttl() time.Duration {
	if j.TTL <= 0 {
		return DefaultTTL
	}

	return j.TTL
}

// ExpiresIn is the token lifetime in seconds.
func (j *JWT) ExpiresIn() int {
	return int(j.ttl().Seconds())
}

func (j *JWT) CreateToken(userID int) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(j.ttl()).Unix(),
	})

	return token.SignedString([]byte(j.Secret))
}

// VerifyToken checks signature and expiry and returns the user id claim.
func (j *JWT) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(j.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)

	if !ok || userID <= 0 {
		return 0, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}

	return int(userID), nil
}
