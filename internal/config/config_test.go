package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.CodeTTL)
	assert.False(t, cfg.Redis.RateLimitEnabled())
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("STORE_BACKEND", "dynamo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMongoBackend(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.MongoURI)
	assert.True(t, cfg.Redis.RateLimitEnabled())
}
