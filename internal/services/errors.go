package services

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these
// into stable error kinds for clients; anything else maps to a server error
// with the cause logged, not returned.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrForbidden          = errors.New("forbidden")
)
