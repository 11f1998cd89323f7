package user

import "errors"

var (
	// ErrNotFound indicates the user id or email does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a registration attempt with an email already in use.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials indicates a failed email/password login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidPin indicates a failed PIN login attempt.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrNoPin indicates a PIN login for an account without a registered PIN.
	ErrNoPin = errors.New("no pin registered")
)
