package signup

import "errors"

var (
	// ErrDuplicate means the email already signed up for this list.
	ErrDuplicate   = errors.New("signup: email already registered")
	ErrPersistence = errors.New("signup: failed to save signup")
)
