// Package admin exposes tracking statistics and Prometheus metrics to the
// operator, guarded by a single bearer token.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/handler"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/binder"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
)

// StatsReader is implemented by *tracking.Service.
type StatsReader interface {
	Stats(ctx context.Context, q tracking.StatsQuery) (tracking.Stats, error)
}

type Handler struct {
	cfg        Config
	stats      StatsReader
	gatherer   prometheus.Gatherer
	log        *slog.Logger
	errHandler handler.ErrorHandler[handler.Context]
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) {
		if g != nil {
			h.gatherer = g
		}
	}
}

func NewHandler(cfg Config, stats StatsReader, opts ...Option) *Handler {
	h := &Handler{
		cfg:      cfg,
		stats:    stats,
		gatherer: prometheus.DefaultGatherer,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("admin"))
	h.errHandler = handler.NewErrorHandler(h.log)
	return h
}

// Routes mounts the token-protected endpoints:
//
//	GET /api/admin/tracking/stats?since=&until=
//	GET /metrics
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(RequireToken(h.cfg.Token, h.errHandler))

		r.Get("/api/admin/tracking/stats", handler.Wrap(h.trackingStats,
			handler.WithBinders[handler.Context, statsRequest](binder.Query()),
			handler.WithErrorHandler[handler.Context, statsRequest](h.errHandler),
		))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{
			ErrorLog: slog.NewLogLogger(h.log.Handler(), slog.LevelError),
		}))
	})
}

type statsRequest struct {
	Since string `query:"since"`
	Until string `query:"until"`
}

func (req statsRequest) query() (tracking.StatsQuery, error) {
	var (
		q    tracking.StatsQuery
		verr = handler.NewValidationError()
		err  error
	)
	if q.Since, err = parseTime(req.Since); err != nil {
		verr.Add("since", "must be an RFC3339 timestamp")
	}
	if q.Until, err = parseTime(req.Until); err != nil {
		verr.Add("until", "must be an RFC3339 timestamp")
	}
	if verr.IsEmpty() && !q.Since.IsZero() && !q.Until.IsZero() && !q.Until.After(q.Since) {
		verr.Add("until", "must be after since")
	}
	if !verr.IsEmpty() {
		return q, verr
	}
	return q, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *Handler) trackingStats(ctx handler.Context, req statsRequest) handler.Response {
	q, err := req.query()
	if err != nil {
		return handler.Error(err)
	}
	st, err := h.stats.Stats(ctx, q)
	if err != nil {
		return handler.Error(err)
	}
	ctx.ResponseWriter().Header().Set("Cache-Control", "no-store")
	return handler.JSON(st)
}
