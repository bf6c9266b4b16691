package kennel

import "errors"

var (
	// ErrNotFound is returned when a user or image record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateUsername is returned when registering a username that is already taken
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials is returned when a password does not match the stored hash
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token fails verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when an authenticated user does not own the target resource
	ErrForbidden = errors.New("forbidden")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
