// Package server assembles the HTTP router from the feature handlers.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/clientip"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/httpserver"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/requestid"
)

// Routes is implemented by every feature handler.
type Routes interface {
	Routes(r chi.Router)
}

// Deps are the pieces the router mounts. Nil handlers are skipped. A nil
// ClientIP resolver trusts no proxy headers.
type Deps struct {
	Log          *slog.Logger
	ClientIP     *clientip.Resolver
	Handlers     []Routes
	ReadyChecks  []httpserver.Check
	CheckTimeout time.Duration
}

// NewRouter returns the service router:
//
//	GET /health/live
//	GET /health/ready
//
// plus every route of d.Handlers.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.ClientIP == nil {
		d.ClientIP = clientip.New()
	}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		d.ClientIP.Middleware,
		middleware.Recoverer,
		middleware.CleanPath,
	)

	r.Get("/health/live", httpserver.Live())
	r.Get("/health/ready", httpserver.Ready(d.Log, d.CheckTimeout, d.ReadyChecks...))

	for _, h := range d.Handlers {
		if h != nil {
			h.Routes(r)
		}
	}
	return r
}
