package apperrors

import (
	"errors"
)

var (
	// Account and credentials
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrCredentialInvalid = errors.New("username or password is incorrect")
	ErrPermissionDenied  = errors.New("permission denied")

	// Password hashing primitives
	ErrHashing      = errors.New("password hashing failed")
	ErrVerification = errors.New("password verification failed")

	// Tokens
	ErrTokenCreation = errors.New("token creation failed")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token is expired")

	// Authentication state
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionMismatch  = errors.New("session mismatch")

	// Infrastructure
	ErrPersistence = errors.New("persistence error")
	ErrCarrier     = errors.New("token carrier error")

	// Blog
	ErrPostNotFound = errors.New("post not found")
)

// Return true if the error means the caller is not (or no longer) authenticated
// Such errors are client errors and never infrastructure failures
func IsAuthFailure(err error) bool {
	switch {
	case errors.Is(err, ErrPersistence),
		errors.Is(err, ErrTokenCreation),
		errors.Is(err, ErrCarrier),
		errors.Is(err, ErrHashing),
		errors.Is(err, ErrVerification):
		return false
	}

	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSessionMismatch) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCredentialInvalid)
}
