package repository

import "errors"

var (
	ErrInvalidInput       = errors.New("email and password required")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidKind        = errors.New("type must be IN or OUT")
	ErrUnknownUser        = errors.New("user not found")
)
