// Package ratelimiter implements a token bucket limiter with pluggable
// state storage and an HTTP middleware.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes one token; a request that drives the
// balance below zero is denied and the debt must be refilled before the next
// request passes.
//
// MemoryStore keeps buckets in process. RedisStore keeps them in Redis so
// several instances share one budget per key.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(client, "rl:signup"), ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ByIP())).Post("/api/waitlist", h)
package ratelimiter
