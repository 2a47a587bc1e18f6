package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, 8080, cfg.Host.Port)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.Host.CORS)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "local", cfg.Storage.Type)
		assert.Equal(t, int64(10<<20), cfg.Upload.MaxSize)
		assert.Equal(t, int64(10<<20), cfg.Security.JSONLimit)
		assert.Equal(t, 200, cfg.Security.RateLimitRequests)
		assert.Equal(t, 15*time.Minute, cfg.Security.RateLimitWindow)
		assert.Equal(t, 30*time.Second, cfg.Cache.PublicTTL)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("env overrides", func(t *testing.T) {
		viper.Reset()
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("APP_ENV", "production")
		t.Setenv("HOST_CORS", "https://a.example, https://b.example/")
		t.Setenv("HOST_PUBLIC_URL", "https://vault.example/")
		t.Setenv("UPLOAD_MAX_SIZE", "25")
		t.Setenv("DATABASE_DRIVER", "postgres")
		t.Setenv("DATABASE_DSN", "host=localhost user=vault")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, []string{"https://a.example", "https://b.example/"}, cfg.Host.CORS)
		assert.Equal(t, "https://vault.example", cfg.Host.PublicURL)
		assert.Equal(t, int64(25<<20), cfg.Upload.MaxSize)
		assert.Equal(t, "postgres", cfg.Database.Driver)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		viper.Reset()
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.ErrorIs(t, err, ErrNoJWTSecret)
	})

	t.Run("invalid values", func(t *testing.T) {
		cases := map[string]string{
			"APP_LOG_LEVEL":   "loud",
			"APP_ENV":         "staging",
			"STORAGE_TYPE":    "ftp",
			"DATABASE_DRIVER": "mysql",
			"CACHE_TYPE":      "memcached",
			"UPLOAD_MAX_SIZE": "0",
		}

		for key, val := range cases {
			t.Run(key, func(t *testing.T) {
				viper.Reset()
				t.Setenv("JWT_SECRET", "secret")
				t.Setenv(key, val)

				_, err := Load()
				assert.Error(t, err)
			})
		}
	})

	t.Run("s3 requires bucket settings", func(t *testing.T) {
		viper.Reset()
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORAGE_TYPE", "s3")

		_, err := Load()
		assert.EqualError(t, err, "bucket can't be empty")
	})

	t.Run("turnstile requires secret", func(t *testing.T) {
		viper.Reset()
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("CLOUDFLARE_TURNSTILE_ENABLED", "true")

		_, err := Load()
		assert.EqualError(t, err, "turnstile secret token is missing")
	})
}
