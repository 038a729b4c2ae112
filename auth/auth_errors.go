package auth

import "errors"

var (
	// ErrAlreadyExists is returned by Register when the username is taken.
	ErrAlreadyExists = errors.New("user already exists with this username")

	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password, so account existence never leaks.
	ErrInvalidCredentials = errors.New("username or password incorrect")

	// ErrInvalidToken is returned when a token fails signature or expiry
	// checks, or when an account's stored token can no longer be decoded.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSuperseded is returned when a presented token is valid but has been
	// replaced by a later login.
	ErrSuperseded = errors.New("session superseded")

	// ErrPersistence is returned when the account store fails mid-operation.
	// The operation failed as a whole; no token is considered issued.
	ErrPersistence = errors.New("persistence failure")
)
