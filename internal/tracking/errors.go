package tracking

import "errors"

var (
	// ErrNotFound means no "sent" record exists for a tracking id.
	ErrNotFound = errors.New("tracking: sent record not found")
	// ErrPersistence wraps store write failures.
	ErrPersistence = errors.New("tracking: failed to persist record")
	// ErrLookup wraps store read failures other than "not found".
	ErrLookup = errors.New("tracking: failed to look up record")

	ErrInvalidRecord    = errors.New("tracking: invalid record")
	ErrInvalidEmailType = errors.New("tracking: invalid email type")
	ErrInvalidID        = errors.New("tracking: malformed tracking id")

	ErrMissingDestination    = errors.New("tracking: destination is required")
	ErrDestinationNotAllowed = errors.New("tracking: destination is not allowed")
)
