package user

import "errors"

var (
	// -- Authentication --
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")

	// -- Tokens --
	ErrTokenNotFound = errors.New("invalid verification token")
	ErrTokenExpired  = errors.New("verification token has expired")

	// -- Resource State --
	ErrUserNotFound = errors.New("user not found")

	// -- Validation --
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)
