// Package httpserver runs an http.Handler until its context ends and then
// drains in-flight requests within a shutdown deadline.
//
// It also provides liveness and readiness handlers. Readiness runs named
// dependency checks, each bounded by a timeout, and reports per-check status
// as JSON:
//
//	r.Get("/health/live", httpserver.Live())
//	r.Get("/health/ready", httpserver.Ready(log, time.Second, httpserver.Check{
//		Name: "postgres", Fn: pg.Healthcheck(pool),
//	}))
package httpserver
