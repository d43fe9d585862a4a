package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/opsman/core/config"
)

// Environment mutation rules out t.Parallel in this file.

type storeConfig struct {
	DSN               string        `env:"TEST_STORE_DSN" envDefault:"postgres://localhost:5432/opsman"`
	HeartbeatInterval time.Duration `env:"TEST_STORE_HEARTBEAT" envDefault:"10s"`
	MaxInactiveTime   time.Duration `env:"TEST_STORE_MAX_INACTIVE" envDefault:"5m"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "postgres://localhost:5432/opsman", cfg.DSN)
		assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
		assert.Equal(t, 5*time.Minute, cfg.MaxInactiveTime)
	})

	t.Run("reads the environment", func(t *testing.T) {
		type envConfig struct {
			DSN string `env:"TEST_ENV_DSN" envDefault:"unset"`
		}
		t.Setenv("TEST_ENV_DSN", "postgres://db:5432/prod")

		var cfg envConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "postgres://db:5432/prod", cfg.DSN)
	})

	t.Run("caches per type", func(t *testing.T) {
		type cachedConfig struct {
			Value string `env:"TEST_CACHED_VALUE" envDefault:"first"`
		}
		t.Setenv("TEST_CACHED_VALUE", "first")

		var first cachedConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("TEST_CACHED_VALUE", "second")

		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second, "second load must come from the cache")
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParseFailed)
	})

	t.Run("nil target", func(t *testing.T) {
		err := config.Load[storeConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("passes on success", func(t *testing.T) {
		assert.NotPanics(t, func() {
			var cfg storeConfig
			config.MustLoad(&cfg)
		})
	})
}
