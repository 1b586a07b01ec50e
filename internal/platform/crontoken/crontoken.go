// Package crontoken signs and verifies the short-lived token the scheduler presents when it
// triggers the expiration sweep.
package crontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Subject = "scheduler"
	Issuer  = "order-notification-scheduler"
)

var ErrInvalidToken = errors.New("invalid scheduler token")

// Sign issues an HS256 token for the scheduler valid for ttl.
func Sign(secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("scheduler token secret is empty")
	}
	claims := jwt.RegisteredClaims{
		Subject:   Subject,
		Issuer:    Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing scheduler token: %w", err)
	}
	return signed, nil
}

// Verify accepts only unexpired HS256 tokens signed with secret whose subject is Subject.
func Verify(secret, token string) error {
	if secret == "" || token == "" {
		return ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(Subject),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
