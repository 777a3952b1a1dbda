package domain

import "errors"

// Sentinel errors returned by stores and services. Handlers translate them
// to HTTP statuses; callers test with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateName      = errors.New("product name already exists")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)
