package mailer

import "errors"

var (
	// ErrEmailDeliveryFailed means the provider did not accept the message
	// after every attempt. Callers treat it as non-fatal.
	ErrEmailDeliveryFailed = errors.New("mailer: email delivery failed")

	ErrInvalidParams  = errors.New("mailer: invalid send parameters")
	ErrInvalidBaseURL = errors.New("mailer: base url must be an absolute http(s) url")
)
