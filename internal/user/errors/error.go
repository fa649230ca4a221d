package errors

import "errors"

var (
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
)
