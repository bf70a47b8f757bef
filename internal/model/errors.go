package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrRoleNotFound      = errors.New("role not found")
	ErrSelfDelete        = errors.New("cannot delete own account")

	// Employee related errors
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrEmployeeCodeConflict = errors.New("employee code already exists")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
