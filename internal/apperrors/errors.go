// Package apperrors defines the sentinel errors shared by the auth core and the
// HTTP layer. Callers wrap them with %w and match with errors.Is.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// Auth errors.
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrCodeMismatch          = errors.New("invalid activation code")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUnauthenticated       = errors.New("please login to access this resource")
	ErrForbidden             = errors.New("you are not allowed to access this resource")

	// Generic errors used by the collaborator surfaces.
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

// Status maps err to the HTTP status the handlers reply with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidOrExpiredToken),
		errors.Is(err, ErrCodeMismatch),
		errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether err is safe to show to clients verbatim.
func Public(err error) bool {
	return Status(err) != http.StatusInternalServerError
}
