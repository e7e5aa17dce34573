package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// trip, day, stop, hotspot or marker does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing name, month out of range, unknown method).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
