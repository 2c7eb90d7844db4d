package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/async"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/email"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
)

// Recorder appends the "sent" tracking record. *tracking.Service
// implements it.
type Recorder interface {
	RecordSent(ctx context.Context, trackingID string, t tracking.EmailType, meta tracking.Metadata) (tracking.Record, error)
}

// SendParams identifies the recipient and template.
type SendParams struct {
	Type      tracking.EmailType
	Email     string
	FirstName string
	LastName  string
	// Amount is the beta deposit, ignored for waitlist emails.
	Amount float64
}

// SendResult describes a delivered email. Recorded is false when the
// "sent" record could not be written.
type SendResult struct {
	TrackingID string             `json:"tracking_id"`
	EmailType  tracking.EmailType `json:"email_type"`
	Recorded   bool               `json:"recorded"`
}

// Orchestrator sends tracked emails.
type Orchestrator struct {
	sender   email.EmailSender
	composer *Composer
	recorder Recorder
	cfg      Config
	log      *slog.Logger
	metrics  *tracking.Metrics
	bg       async.Group
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithMetrics(m *tracking.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(sender email.EmailSender, composer *Composer, recorder Recorder, cfg Config, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		sender:   sender,
		composer: composer,
		recorder: recorder,
		cfg:      cfg.withDefaults(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With(logger.Component("mailer"))
	return o
}

// Send generates a tracking id, composes and delivers the email, and
// appends the "sent" record.
//
// A provider failure after all attempts returns an error wrapping
// ErrEmailDeliveryFailed together with the tracking id that was used; no
// record is written. A record failure after delivery is not an error:
// the result has Recorded=false and the record goes to the dead-letter log.
func (o *Orchestrator) Send(ctx context.Context, p SendParams) (SendResult, error) {
	if !p.Type.Valid() {
		return SendResult{}, fmt.Errorf("%w: unknown email type %q", ErrInvalidParams, p.Type)
	}
	to := strings.TrimSpace(p.Email)
	if to == "" {
		return SendResult{}, fmt.Errorf("%w: recipient email is required", ErrInvalidParams)
	}

	id, err := tracking.NewID(p.Type)
	if err != nil {
		return SendResult{}, err
	}
	res := SendResult{TrackingID: id, EmailType: p.Type}

	msg, err := o.composer.Compose(ctx, ComposeParams{
		Type:       p.Type,
		TrackingID: id,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Amount:     p.Amount,
	})
	if err != nil {
		return res, err
	}

	if err := o.deliver(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  msg.Subject,
		BodyHTML: msg.HTML,
		Tag:      id,
	}, id); err != nil {
		o.metrics.DeliveryFailed(p.Type)
		return res, errors.Join(ErrEmailDeliveryFailed, err)
	}

	if _, err := o.recorder.RecordSent(ctx, id, p.Type, sentMetadata(p)); err != nil {
		o.log.WarnContext(ctx, "email delivered without sent record",
			logger.TrackingID(id),
			logger.EmailType(string(p.Type)),
			logger.Error(err),
		)
		return res, nil
	}

	res.Recorded = true
	return res, nil
}

// deliver calls the sender up to SendAttempts times with linear backoff.
// Invalid parameters are not retried.
func (o *Orchestrator) deliver(ctx context.Context, params email.SendEmailParams, trackingID string) error {
	var err error
	for attempt := 1; attempt <= o.cfg.SendAttempts; attempt++ {
		start := time.Now()
		if err = o.sendOnce(ctx, params); err == nil {
			o.log.DebugContext(ctx, "email accepted by provider",
				logger.TrackingID(trackingID),
				logger.Attempt(attempt),
				logger.Duration(time.Since(start)),
			)
			return nil
		}

		o.log.WarnContext(ctx, "email send attempt failed",
			logger.TrackingID(trackingID),
			logger.Attempt(attempt),
			logger.Error(err),
		)
		if errors.Is(err, email.ErrInvalidParams) || attempt == o.cfg.SendAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(o.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

func (o *Orchestrator) sendOnce(ctx context.Context, params email.SendEmailParams) error {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.SendTimeout)
	defer cancel()
	return o.sender.SendEmail(ctx, params)
}

// Dispatch runs Send in the background, detached from ctx cancellation and
// bounded by DispatchTimeout. Failures are logged. The returned future may
// be ignored.
func (o *Orchestrator) Dispatch(ctx context.Context, p SendParams) *async.Future[SendResult] {
	return async.Go(&o.bg, context.WithoutCancel(ctx), p, func(ctx context.Context, p SendParams) (SendResult, error) {
		ctx, cancel := context.WithTimeout(ctx, o.cfg.DispatchTimeout)
		defer cancel()

		res, err := o.Send(ctx, p)
		if err != nil {
			o.log.ErrorContext(ctx, "email dispatch failed",
				logger.TrackingID(res.TrackingID),
				logger.EmailType(string(p.Type)),
				logger.Error(err),
			)
			return res, err
		}
		o.log.InfoContext(ctx, "email sent",
			logger.TrackingID(res.TrackingID),
			logger.EmailType(string(res.EmailType)),
			slog.Bool("recorded", res.Recorded),
		)
		return res, nil
	})
}

// Wait blocks until every dispatched email has finished or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	return o.bg.Wait(ctx)
}

func sentMetadata(p SendParams) tracking.Metadata {
	meta := tracking.Metadata{tracking.MetaTemplate: string(p.Type)}
	if p.Type == tracking.EmailTypeBeta {
		meta[tracking.MetaHasAmount] = p.Amount > 0
		if p.Amount > 0 {
			meta[tracking.MetaAmount] = p.Amount
		}
	}
	return meta
}
