package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("EVENTS_EXCHANGE", "")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "nope")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "app.events", cfg.EventsExchange)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:       "secret",
			StoreBackend:    BackendMemory,
			PresenceBackend: BackendRedis,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"unknown store", func(c *Config) { c.StoreBackend = "sqlite" }, "STORE_BACKEND"},
		{"unknown presence", func(c *Config) { c.PresenceBackend = "etcd" }, "PRESENCE_BACKEND"},
		{"memory presence on postgres", func(c *Config) {
			c.StoreBackend = BackendPostgres
			c.DatabaseDSN = "postgres://localhost/friends"
			c.PresenceBackend = BackendMemory
		}, "requires STORE_BACKEND=memory"},
		{"postgres without dsn", func(c *Config) { c.StoreBackend = BackendPostgres }, "DB_DSN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
