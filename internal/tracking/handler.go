package tracking

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/handler"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/binder"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/clientip"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/useragent"
)

const maxUserAgentLen = 512

// Click rejection reasons reported to metrics.
const (
	reasonMissingDestination = "missing_destination"
	reasonNotAllowed         = "destination_not_allowed"
	reasonUnknownID          = "unknown_tracking_id"
)

// Handler serves the pixel and click callbacks embedded in emails.
type Handler struct {
	svc        *Service
	allow      *Allowlist
	log        *slog.Logger
	metrics    *Metrics
	errHandler handler.ErrorHandler[handler.Context]
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func WithHandlerMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates the tracking callback handler.
func NewHandler(svc *Service, allow *Allowlist, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, allow: allow, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("tracking_handler"))
	h.errHandler = handler.NewErrorHandler(h.log)
	return h
}

// Routes mounts:
//
//	GET /tracking/pixel/{tracking_id}
//	GET /tracking/click/{tracking_id}?destination=<url>
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tracking/pixel/{tracking_id}", handler.Wrap(h.pixel,
		handler.WithBinders[handler.Context, pixelRequest](binder.Path()),
		handler.WithErrorHandler[handler.Context, pixelRequest](h.errHandler),
	))
	r.Get("/tracking/click/{tracking_id}", handler.Wrap(h.click,
		handler.WithBinders[handler.Context, clickRequest](binder.Path(), binder.Query()),
		handler.WithErrorHandler[handler.Context, clickRequest](h.errHandler),
	))
}

type pixelRequest struct {
	TrackingID string `path:"tracking_id"`
}

type clickRequest struct {
	TrackingID  string `path:"tracking_id"`
	Destination string `query:"destination"`
}

// pixel answers 404 for ids without a sent record. Otherwise the GIF is
// served whether or not the open could be stored.
func (h *Handler) pixel(ctx handler.Context, req pixelRequest) handler.Response {
	_, err := h.svc.RecordOpen(ctx, req.TrackingID, requestMetadata(ctx.Request()))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		return handler.Error(errors.Join(handler.ErrNotFound, err))
	default:
		h.log.WarnContext(ctx, "pixel served without recording open",
			logger.TrackingID(req.TrackingID),
			logger.Error(err),
		)
	}
	return pixelResponse{}
}

// click validates the destination before touching the store, so a
// rejected destination never produces a record.
func (h *Handler) click(ctx handler.Context, req clickRequest) handler.Response {
	if strings.TrimSpace(req.Destination) == "" {
		h.metrics.rejectClick(reasonMissingDestination)
		return handler.Error(errors.Join(handler.ErrBadRequest, ErrMissingDestination))
	}
	if err := h.allow.Check(req.Destination); err != nil {
		h.metrics.rejectClick(reasonNotAllowed)
		return handler.Error(errors.Join(handler.ErrBadRequest, err))
	}

	_, err := h.svc.RecordClick(ctx, req.TrackingID, req.Destination, requestMetadata(ctx.Request()))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		h.metrics.rejectClick(reasonUnknownID)
		return handler.Error(errors.Join(handler.ErrNotFound, err))
	default:
		h.log.WarnContext(ctx, "redirecting without recording click",
			logger.TrackingID(req.TrackingID),
			logger.Error(err),
		)
	}

	ctx.ResponseWriter().Header().Set("Cache-Control", "no-store")
	return handler.RedirectWithCode(req.Destination, http.StatusFound)
}

func requestMetadata(r *http.Request) Metadata {
	m := Metadata{}
	if ua := r.UserAgent(); ua != "" {
		if len(ua) > maxUserAgentLen {
			ua = ua[:maxUserAgentLen]
		}
		m[MetaUserAgent] = ua
	}
	client := useragent.Classify(r.UserAgent())
	m[MetaDevice] = client.Device
	if client.MailProxy != "" {
		m[MetaMailProxy] = client.MailProxy
	}
	if ip := clientip.FromRequest(r); ip != "" {
		m[MetaIP] = ip
	}
	return m
}
