package mailer

import "time"

// Config controls composition and delivery.
type Config struct {
	// BaseURL is the public origin used for pixel, click and CTA links.
	BaseURL      string `env:"PUBLIC_BASE_URL,required,notEmpty"`
	BrandName    string `env:"EMAIL_BRAND_NAME" envDefault:"Sick Day Sports Club"`
	SupportEmail string `env:"EMAIL_SUPPORT_ADDRESS"`

	SendAttempts    int           `env:"EMAIL_SEND_ATTEMPTS" envDefault:"3"`
	SendTimeout     time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"10s"`
	RetryBackoff    time.Duration `env:"EMAIL_RETRY_BACKOFF" envDefault:"500ms"`
	DispatchTimeout time.Duration `env:"EMAIL_DISPATCH_TIMEOUT" envDefault:"1m"`
}

func (c Config) withDefaults() Config {
	if c.BrandName == "" {
		c.BrandName = "Sick Day Sports Club"
	}
	if c.SendAttempts < 1 {
		c.SendAttempts = 1
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = time.Minute
	}
	return c
}
