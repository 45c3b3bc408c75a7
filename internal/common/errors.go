// Package common defines shared constants and sentinel errors used across
// the Balance Buddy client, its services and the seeder. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Transport-level errors.
	ErrUnavailable  = errors.New("backend unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")

	// Session lifecycle errors.
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrTokenExpired = errors.New("token expired")
	ErrNoLocalData  = errors.New("local data unavailable")

	// Validation errors.
	ErrInvalidInput     = errors.New("invalid input")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Game rule errors.
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrTaskCompleted     = errors.New("task already completed")
	ErrAvatarNameEmpty   = errors.New("avatar name is required")
)
