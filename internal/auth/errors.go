package auth

import "errors"

var (
	// ErrUnauthenticated is returned for a missing, invalid, or expired credential
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when a valid principal lacks the required role
	ErrForbidden = errors.New("forbidden")

	// Token failure kinds. Each one also matches ErrUnauthenticated.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")
)
