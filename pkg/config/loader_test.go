package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealwatch/dealwatch/pkg/config"
)

type testConfig struct {
	Host  string `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port  int    `env:"TEST_CFG_PORT" envDefault:"5432"`
	Token string `env:"TEST_CFG_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults and environment values", func(t *testing.T) {
		t.Setenv("TEST_CFG_TOKEN", "secret")
		t.Setenv("TEST_CFG_PORT", "9999")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 9999, cfg.Port)
		assert.Equal(t, "secret", cfg.Token)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg struct {
			Missing string `env:"TEST_CFG_DEFINITELY_MISSING,required"`
		}
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[testConfig](nil), config.ErrNilPointer)
	})
}
