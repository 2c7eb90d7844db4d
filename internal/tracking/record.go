// Package tracking records the lifecycle of outbound emails.
//
// Every email gets a tracking id when it is sent. Three kinds of event are
// appended for it: one "sent" row written by the mailer, then any number of
// "opened" rows (tracking pixel loads) and "clicked" rows (wrapped CTA link
// follows). Rows are never updated or deleted. Open and click events are only
// accepted for ids that already have a "sent" row.
package tracking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmailType identifies the template an email was built from.
type EmailType string

const (
	EmailTypeBeta     EmailType = "beta"
	EmailTypeWaitlist EmailType = "waitlist"
)

// EmailTypes lists every known email type.
var EmailTypes = []EmailType{EmailTypeBeta, EmailTypeWaitlist}

func (t EmailType) Valid() bool {
	return t == EmailTypeBeta || t == EmailTypeWaitlist
}

// Status is a lifecycle event kind.
type Status string

const (
	StatusSent    Status = "sent"
	StatusOpened  Status = "opened"
	StatusClicked Status = "clicked"
)

func (s Status) Valid() bool {
	return s == StatusSent || s == StatusOpened || s == StatusClicked
}

// Metadata keys written by this package and the mailer.
const (
	MetaDestination = "destination"
	MetaUserAgent   = "user_agent"
	MetaIP          = "ip"
	MetaDevice      = "device"
	MetaMailProxy   = "mail_proxy"
	MetaTemplate    = "template"
	MetaHasAmount   = "has_amount"
	MetaAmount      = "amount"
)

// Metadata is free-form event context stored as JSON.
type Metadata map[string]any

// Record is one lifecycle event.
type Record struct {
	ID         uuid.UUID `json:"id"`
	TrackingID string    `json:"tracking_id"`
	EmailType  EmailType `json:"email_type"`
	Status     Status    `json:"status"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the fields a store needs before insert.
func (r Record) Validate() error {
	switch {
	case r.TrackingID == "":
		return fmt.Errorf("%w: tracking id is required", ErrInvalidRecord)
	case !r.EmailType.Valid():
		return fmt.Errorf("%w: unknown email type %q", ErrInvalidRecord, r.EmailType)
	case !r.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, r.Status)
	case r.Status == StatusClicked && r.Destination() == "":
		return fmt.Errorf("%w: clicked event requires a destination", ErrInvalidRecord)
	}
	return nil
}

// Destination returns the click destination stored in metadata, if any.
func (r Record) Destination() string {
	s, _ := r.Metadata[MetaDestination].(string)
	return s
}
