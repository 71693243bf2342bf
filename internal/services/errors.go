package services

import "errors"

var (
	ErrForbidden         = errors.New("forbidden")
	ErrSelfDeletion      = errors.New("cannot delete own account")
	ErrDuplicateUsername = errors.New("username already exists")
)
