package posts

import "errors"

// Error kinds surfaced to the request layer. Operations wrap these with
// context; handlers match with errors.Is and map to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
	ErrValidation   = errors.New("invalid input")
)
