package domain

import "errors"

// Conflict
var (
	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrUsernameTaken = errors.New("username already taken")
)

// Unauthorized
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account not active")
	ErrAccountUnverified  = errors.New("verify email first")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountRevoked     = errors.New("account not found or inactive")
)

var (
	ErrForbidden         = errors.New("access forbidden")
	ErrAccountNotFound   = errors.New("user not found")
	ErrPasswordUnchanged = errors.New("new password must be different from current password")
	ErrValidation        = errors.New("validation failed")
	ErrTooManyAttempts   = errors.New("too many login attempts")
)
