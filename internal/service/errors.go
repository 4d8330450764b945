package service

import "errors"

var (
	ErrUnauthorized        = errors.New("incorrect username or password")
	ErrEmailNotConfirmed   = errors.New("email address is not confirmed")
	ErrConflict            = errors.New("user already exists")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("insufficient permissions")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrResetTokenInvalid = errors.New("invalid or expired token")
	ErrResetTokenUsed    = errors.New("token has already been used")
)
