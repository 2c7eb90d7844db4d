// Package config assembles the service configuration from the environment.
package config

import (
	"fmt"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/admin"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/mailer"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/signup"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/internal/tracking"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/clientip"
	pkgconfig "github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/config"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/email"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/httpserver"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/pg"
	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/redis"
)

// Config is the full service configuration.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"sdsc-api"`

	HTTP     httpserver.Config
	ClientIP clientip.Config
	PG       pg.Config
	Redis    redis.Config
	Email    email.Config
	Mailer   mailer.Config
	Tracking tracking.Config
	Signup   signup.Config
	Admin    admin.Config
}

// Load reads the environment and fails on the first missing required value.
func Load() (Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := tracking.NewAllowlist(cfg.Mailer.BaseURL, cfg.Tracking.AllowedHosts); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if _, err := clientip.ParseTrusted(cfg.ClientIP.TrustedProxies); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
