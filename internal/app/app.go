// Package app wires configuration, stores, email delivery and HTTP serving
// into a running service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/admin"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/config"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/db/migrations"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/mailer"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/server"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/signup"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/clientip"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/email"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/httpserver"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/logger"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/pg"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/ratelimiter"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/redis"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/requestid"
)

const (
	rateLimitPrefix = "ratelimit:signup"
	drainTimeout    = 30 * time.Second
)

// Run loads configuration, connects dependencies, and serves until ctx is
// cancelled. Pending email dispatches are drained before it returns.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)
	log.InfoContext(ctx, "starting service", slog.String("addr", cfg.HTTP.Addr))

	var (
		pool *pgxpool.Pool
		rdb  *goredis.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if pool, err = pg.Connect(gctx, cfg.PG); err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		return nil
	})
	if cfg.Redis.Enabled() {
		g.Go(func() (err error) {
			if rdb, err = redis.Connect(gctx, cfg.Redis); err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			return nil
		})
	}
	err = g.Wait()
	if pool != nil {
		defer pool.Close()
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("close redis", logger.Error(err))
			}
		}()
	}
	if err != nil {
		return err
	}

	if err := pg.Migrate(ctx, pool, migrations.FS, cfg.PG, log); err != nil {
		return err
	}

	readyChecks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}
	if rdb != nil {
		readyChecks = append(readyChecks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})
	}

	sender, err := email.New(ctx, cfg.Email)
	if err != nil {
		return fmt.Errorf("email provider: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := tracking.NewMetrics(reg)

	allow, err := tracking.NewAllowlist(cfg.Mailer.BaseURL, cfg.Tracking.AllowedHosts)
	if err != nil {
		return err
	}
	var trackingStore tracking.Store = tracking.NewPGStore(pool)
	if cfg.Tracking.SentCacheSize > 0 {
		trackingStore = tracking.NewCachedStore(trackingStore, cfg.Tracking.SentCacheSize, cfg.Tracking.SentCacheTTL)
	}
	trackingSvc := tracking.NewService(trackingStore, cfg.Tracking,
		tracking.WithLogger(log),
		tracking.WithMetrics(metrics),
	)

	composer, err := mailer.NewComposer(cfg.Mailer)
	if err != nil {
		return err
	}
	orchestrator := mailer.NewOrchestrator(sender, composer, trackingSvc, cfg.Mailer,
		mailer.WithLogger(log),
		mailer.WithMetrics(metrics),
	)

	limiter, closeLimiter, err := newSignupLimiter(cfg.Signup.RateLimit, rdb)
	if err != nil {
		return err
	}
	defer closeLimiter()

	signupSvc := signup.NewService(signup.NewPGStore(pool), orchestrator, cfg.Signup, signup.WithLogger(log))

	ipResolver, err := clientip.NewFromConfig(cfg.ClientIP)
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Log:      log,
		ClientIP: ipResolver,
		Handlers: []server.Routes{
			tracking.NewHandler(trackingSvc, allow,
				tracking.WithHandlerLogger(log),
				tracking.WithHandlerMetrics(metrics),
			),
			signup.NewHandler(signupSvc,
				signup.WithHandlerLogger(log),
				signup.WithRateLimiter(limiter),
			),
			admin.NewHandler(cfg.Admin, trackingSvc,
				admin.WithLogger(log),
				admin.WithGatherer(reg),
			),
		},
		ReadyChecks: readyChecks,
	})

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))

	runErr := srv.Run(ctx, router)

	// Requests are drained; wait for the emails they dispatched.
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := orchestrator.Wait(drainCtx); err != nil {
		log.Warn("pending emails not drained", logger.Error(err))
	}
	if runErr != nil {
		return runErr
	}
	log.Info("service stopped")
	return nil
}

// newSignupLimiter keeps buckets in redis when a client is given and in
// process otherwise.
func newSignupLimiter(cfg ratelimiter.Config, rdb *goredis.Client) (*ratelimiter.Bucket, func(), error) {
	if rdb != nil {
		b, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb, rateLimitPrefix), cfg)
		return b, func() {}, err
	}
	store := ratelimiter.NewMemoryStore()
	b, err := ratelimiter.NewBucket(store, cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return b, store.Close, nil
}
