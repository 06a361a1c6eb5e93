// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email, username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to register or update
	// a user with an email that already belongs to another account.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUsernameAlreadyExists is returned when attempting to register or update
	// a user with a username that already belongs to another account.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrDuplicateUser is returned by the persistence layer when a unique
	// constraint on username or email is violated.
	ErrDuplicateUser = errors.New("username or email already taken")

	// ErrInvalidCredentials is returned when login fails. It intentionally does
	// not distinguish between an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")
)
