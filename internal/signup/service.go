package signup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/mailer"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/async"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
)

// Dispatcher sends an email in the background. *mailer.Orchestrator
// implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, p mailer.SendParams) *async.Future[mailer.SendResult]
}

// Service validates and stores signups, then dispatches the welcome email.
// Email outcome never affects the returned result.
type Service struct {
	store Store
	mail  Dispatcher
	cfg   Config
	log   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a Service. mail may be nil to skip emails.
func NewService(store Store, mail Dispatcher, cfg Config, opts ...Option) *Service {
	s := &Service{store: store, mail: mail, cfg: cfg.withDefaults(), log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("signup"))
	return s
}

// JoinWaitlist stores a waitlist entry and dispatches the waitlist email.
func (s *Service) JoinWaitlist(ctx context.Context, in WaitlistInput) (WaitlistEntry, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return WaitlistEntry{}, err
	}

	entry := WaitlistEntry{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Location:  in.Location,
		Interests: in.Interests,
	}
	if err := s.write(ctx, func(ctx context.Context) error { return s.store.CreateWaitlistEntry(ctx, &entry) }); err != nil {
		return WaitlistEntry{}, err
	}

	s.dispatch(ctx, mailer.SendParams{
		Type:      tracking.EmailTypeWaitlist,
		Email:     entry.Email,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
	})
	return entry, nil
}

// ApplyBeta stores a beta application and dispatches the beta email with
// the pledged deposit.
func (s *Service) ApplyBeta(ctx context.Context, in BetaInput) (BetaApplication, error) {
	in = in.normalize()
	if err := in.validate(s.cfg.MaxDepositAmount); err != nil {
		return BetaApplication{}, err
	}

	app := BetaApplication{
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Phone:           in.Phone,
		ExperienceLevel: ExperienceLevel(in.ExperienceLevel),
		Activities:      in.Activities,
		DepositAmount:   in.DepositAmount,
	}
	if err := s.write(ctx, func(ctx context.Context) error { return s.store.CreateBetaApplication(ctx, &app) }); err != nil {
		return BetaApplication{}, err
	}

	s.dispatch(ctx, mailer.SendParams{
		Type:      tracking.EmailTypeBeta,
		Email:     app.Email,
		FirstName: app.FirstName,
		LastName:  app.LastName,
		Amount:    app.DepositAmount,
	})
	return app, nil
}

func (s *Service) write(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	err := fn(ctx)
	switch {
	case err == nil, errors.Is(err, ErrDuplicate), errors.Is(err, ErrPersistence):
		return err
	default:
		return errors.Join(ErrPersistence, err)
	}
}

func (s *Service) dispatch(ctx context.Context, p mailer.SendParams) {
	if s.mail == nil {
		s.log.DebugContext(ctx, "email dispatch disabled", logger.EmailType(string(p.Type)))
		return
	}
	s.mail.Dispatch(ctx, p)
}
