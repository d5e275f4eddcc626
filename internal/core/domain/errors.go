package domain

import "errors"

// Authentication and authorization failures. ErrInvalidToken deliberately
// covers malformed, tampered and expired tokens alike so callers cannot be
// used as a verification oracle. ErrInvalidCredentials is identical whether
// the email is unknown or the password wrong.
var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUnknownRole        = errors.New("unknown role")
)
