package contact

import "errors"

// Sentinel errors for submission validation.
var (
	ErrMissingFields = errors.New("required fields missing")
	ErrInvalidEmail  = errors.New("invalid email")
)
