package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Session errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrInvalidToken   = errors.New("invalid token")

	// Validation errors raised before any request is sent.
	ErrorValidation = errors.New("validation error")
)
