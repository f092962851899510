package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_AUTH_SECRET", "0123456789abcdef0123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ":3333", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 6000*time.Second, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "blog.events", cfg.AMQP.Exchange)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_HTTP_ADDR", ":8080")
	t.Setenv("APP_HTTP_READ_TIMEOUT", "3s")
	t.Setenv("APP_DB_DRIVER", "postgres")
	t.Setenv("APP_DB_DSN", "postgres://blog@localhost/blog?sslmode=disable")
	t.Setenv("APP_DB_MAX_OPEN_CONNS", "7")
	t.Setenv("APP_DB_DEBUG", "true")
	t.Setenv("APP_AUTH_SECRET", "0123456789abcdef0123")
	t.Setenv("APP_AUTH_TOKEN_TTL", "1h")
	t.Setenv("APP_REDIS_ADDR", "localhost:6379")
	t.Setenv("APP_REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 7, cfg.DB.MaxOpenConns)
	assert.True(t, cfg.DB.Debug)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)

	db := cfg.Database()
	assert.Equal(t, "postgres", db.Driver)
	assert.Equal(t, 7, db.MaxOpenConns)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret": {},
		"short secret":   {"APP_AUTH_SECRET": "short"},
		"bad driver":     {"APP_AUTH_SECRET": "0123456789abcdef0123", "APP_DB_DRIVER": "oracle"},
		"bad env":        {"APP_AUTH_SECRET": "0123456789abcdef0123", "APP_ENV": "staging"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_AUTH_SECRET", "")
			for k, v := range vars {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
