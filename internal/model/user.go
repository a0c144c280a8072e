package model

import (
	"errors"
	"time"
)

// User is a marketplace account held by the development backend.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// MinPasswordLength is the shortest password accepted on registration.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by ValidatePassword.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ValidatePassword checks a new password against the registration policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
