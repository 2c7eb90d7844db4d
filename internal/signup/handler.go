package signup

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/handler"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/binder"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/ratelimiter"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/validator"
)

// Handler serves the public signup API.
type Handler struct {
	svc        *Service
	limiter    ratelimiter.RateLimiter
	log        *slog.Logger
	errHandler handler.ErrorHandler[handler.Context]
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRateLimiter limits both endpoints per client IP.
func WithRateLimiter(l ratelimiter.RateLimiter) HandlerOption {
	return func(h *Handler) { h.limiter = l }
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func NewHandler(svc *Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("signup_handler"))
	h.errHandler = handler.NewErrorHandler(h.log)
	return h
}

// Routes mounts:
//
//	POST /api/waitlist
//	POST /api/beta-applications
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(ratelimiter.Middleware(h.limiter,
				ratelimiter.Composite(ratelimiter.Static("signup"), ratelimiter.ByIP()),
				ratelimiter.WithLimitedHandler(h.limited),
				ratelimiter.WithLogger(h.log),
			))
		}

		r.Post("/api/waitlist", handler.Wrap(h.joinWaitlist,
			handler.WithBinders[handler.Context, WaitlistInput](binder.Body()),
			handler.WithErrorHandler[handler.Context, WaitlistInput](h.errHandler),
		))
		r.Post("/api/beta-applications", handler.Wrap(h.applyBeta,
			handler.WithBinders[handler.Context, BetaInput](binder.Body()),
			handler.WithErrorHandler[handler.Context, BetaInput](h.errHandler),
		))
	})
}

func (h *Handler) joinWaitlist(ctx handler.Context, in WaitlistInput) handler.Response {
	entry, err := h.svc.JoinWaitlist(ctx, in)
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(entry, handler.WithJSONStatus(http.StatusCreated))
}

func (h *Handler) applyBeta(ctx handler.Context, in BetaInput) handler.Response {
	app, err := h.svc.ApplyBeta(ctx, in)
	if err != nil {
		return handler.Error(httpError(err))
	}
	return handler.JSON(app, handler.WithJSONStatus(http.StatusCreated))
}

func (h *Handler) limited(w http.ResponseWriter, r *http.Request) {
	h.errHandler(handler.NewContext(w, r), handler.ErrTooManyRequests)
}

func httpError(err error) error {
	if ve := validator.Extract(err); ve != nil {
		out := handler.NewValidationError()
		for _, e := range ve {
			out.Add(e.Field, e.Message)
		}
		return out
	}
	if errors.Is(err, ErrDuplicate) {
		return errors.Join(handler.ErrConflict, err)
	}
	return err
}
