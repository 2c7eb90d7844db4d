package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/config"
)

type sampleConfig struct {
	BaseURL string        `env:"CFG_TEST_BASE_URL,required,notEmpty"`
	Hosts   []string      `env:"CFG_TEST_HOSTS" envSeparator:","`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"3s"`
}

func TestLoad(t *testing.T) {
	t.Run("parses values and defaults", func(t *testing.T) {
		t.Setenv("CFG_TEST_BASE_URL", "https://example.com")
		t.Setenv("CFG_TEST_HOSTS", "a.com,b.com")

		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "https://example.com", cfg.BaseURL)
		assert.Equal(t, []string{"a.com", "b.com"}, cfg.Hosts)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
	})

	t.Run("missing required value", func(t *testing.T) {
		t.Setenv("CFG_TEST_BASE_URL", "")

		var cfg sampleConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *sampleConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("must load panics", func(t *testing.T) {
		t.Setenv("CFG_TEST_BASE_URL", "")
		assert.Panics(t, func() {
			var cfg sampleConfig
			config.MustLoad(&cfg)
		})
	})
}
