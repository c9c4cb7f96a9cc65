// Package common defines shared constants, sentinel errors and the status
// error wrapper used across trustkeeper components. Callers should use
// errors.Is to match the sentinels and StatusCode to read the status.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound           = errors.New("not found")
	ErrKindNotFound         = errors.New("challenge kind not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrServiceNotRegistered = errors.New("registered service not found")

	// Generic flow control.
	ErrorInternal = errors.New("internal error")
	ErrCanceled   = errors.New("canceled")

	// Storage errors.
	ErrStoreNotImplemented = errors.New("security store type not implemented")
	ErrScaffoldNotFound    = errors.New("scaffold directory not found")
	ErrKeysUnavailable     = errors.New("domain keys unavailable")

	// Auth errors.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenMismatch     = errors.New("token mismatch")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrPublicKeyInvalid  = errors.New("public key is not valid")
	ErrNoAdminPermission = errors.New("user does not have admin permissions")

	// Challenge errors.
	ErrChallengeSumMismatch = errors.New("challengeSum mismatch")
	ErrSourceMismatch       = errors.New("source code mismatch")
	ErrInvalidPayload       = errors.New("invalid challenge payload")

	// Crypto errors.
	ErrEmptyPlaintext = errors.New("no string found to encrypt")

	// User policy errors.
	ErrInvalidUser     = errors.New("invalid user details")
	ErrInvalidPassword = errors.New("password does not meet policy")
	ErrInvalidEmail    = errors.New("invalid email")
)
