package userrepo

import "errors"

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken indicates another user already owns the email address.
	ErrEmailTaken = errors.New("user email already in use")
)
