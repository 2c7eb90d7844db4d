package signup

import (
	"time"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/ratelimiter"
)

// Config bounds signup input and throughput.
type Config struct {
	WriteTimeout     time.Duration      `env:"SIGNUP_WRITE_TIMEOUT" envDefault:"5s"`
	MaxDepositAmount float64            `env:"SIGNUP_MAX_DEPOSIT" envDefault:"10000"`
	RateLimit        ratelimiter.Config `envPrefix:"SIGNUP_RATE_LIMIT_"`
}

func (c Config) withDefaults() Config {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.MaxDepositAmount <= 0 {
		c.MaxDepositAmount = 10000
	}
	return c
}
