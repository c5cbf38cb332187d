package domain

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStyleNotFound    = errors.New("style not found")
	ErrStyleLocked      = errors.New("style locked")
	ErrQuotaBlocked     = errors.New("quota blocked")
	ErrPermissionDenied = errors.New("permission denied")
)
