package database

import "errors"

var (
	// ErrShortCodeExists is returned when an insert attempts to reuse a
	// short code that is already taken.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when no short link matches the given
	// short code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrUserExists is returned when registration collides with an
	// existing username or email.
	ErrUserExists = errors.New("user exists")
	// ErrUserNotFound is returned when no user matches the given
	// identifier or username.
	ErrUserNotFound = errors.New("user not found")
)
