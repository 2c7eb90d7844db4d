// Package mailer composes funnel emails and sends them with tracking.
//
// Each message carries one tracking id, embedded in a pixel URL and in the
// click-wrapped CTA link. Orchestrator.Send ties the pieces together:
// id, compose, deliver with retry, then the "sent" tracking record.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
)

const maxSubjectLen = 200

// CTA destinations relative to the base URL.
const (
	betaNextStepsPath  = "/beta/next-steps"
	waitlistGuidesPath = "/guides"
)

// Message is a composed email.
type Message struct {
	Subject string
	HTML    string
}

// ComposeParams are the composer inputs. Amount is only used for beta
// emails; zero means no amount.
type ComposeParams struct {
	Type       tracking.EmailType
	TrackingID string
	FirstName  string
	LastName   string
	Amount     float64
}

// Composer renders emails. It has no side effects.
type Composer struct {
	baseURL      string
	brand        string
	supportEmail string
}

// NewComposer validates cfg.BaseURL and returns a Composer.
func NewComposer(cfg Config) (*Composer, error) {
	cfg = cfg.withDefaults()
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}
	return &Composer{
		baseURL:      strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"),
		brand:        cfg.BrandName,
		supportEmail: cfg.SupportEmail,
	}, nil
}

// PixelURL is the tracking pixel address for id.
func (c *Composer) PixelURL(id string) string {
	return c.baseURL + "/tracking/pixel/" + url.PathEscape(id)
}

// ClickURL wraps destination in the click tracking endpoint for id.
func (c *Composer) ClickURL(id, destination string) string {
	return c.baseURL + "/tracking/click/" + url.PathEscape(id) + "?destination=" + url.QueryEscape(destination)
}

// Destination is the CTA target for t.
func (c *Composer) Destination(t tracking.EmailType) string {
	if t == tracking.EmailTypeBeta {
		return c.baseURL + betaNextStepsPath
	}
	return c.baseURL + waitlistGuidesPath
}

// Compose renders the message for p.
func (c *Composer) Compose(ctx context.Context, p ComposeParams) (Message, error) {
	if !p.Type.Valid() {
		return Message{}, fmt.Errorf("%w: unknown email type %q", ErrInvalidParams, p.Type)
	}
	if p.TrackingID == "" {
		return Message{}, fmt.Errorf("%w: tracking id is required", ErrInvalidParams)
	}

	first := cleanName(p.FirstName)
	if first == "" {
		first = "there"
	}
	d := emailData{
		Brand:        c.brand,
		FirstName:    first,
		PixelURL:     c.PixelURL(p.TrackingID),
		ClickURL:     c.ClickURL(p.TrackingID, c.Destination(p.Type)),
		SupportEmail: c.supportEmail,
	}

	var (
		subject string
		html    string
		err     error
	)
	switch p.Type {
	case tracking.EmailTypeBeta:
		if p.Amount > 0 {
			d.Amount = FormatAmount(p.Amount)
		}
		subject = fmt.Sprintf("Welcome to the %s beta, %s", c.brand, first)
		html, err = render(ctx, betaEmail(d))
	default:
		subject = fmt.Sprintf("You're on the %s waitlist, %s", c.brand, first)
		html, err = render(ctx, waitlistEmail(d))
	}
	if err != nil {
		return Message{}, fmt.Errorf("mailer: render %s email: %w", p.Type, err)
	}

	return Message{Subject: sanitizeSubject(subject), HTML: html}, nil
}

// FormatAmount renders a dollar amount as "$1,234.50".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String() + "." + frac
}

// cleanName drops control characters and collapses whitespace.
func cleanName(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}), " ")
}

// sanitizeSubject keeps subjects on one header line.
func sanitizeSubject(s string) string {
	s = cleanName(s)
	if r := []rune(s); len(r) > maxSubjectLen {
		s = string(r[:maxSubjectLen])
	}
	return s
}
