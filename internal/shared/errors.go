package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness or referential constraint violation.
	ErrConflict = errors.New("conflict")
)
