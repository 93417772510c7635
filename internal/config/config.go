package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend identifiers. The backend is an explicit deployment choice,
// never inferred from connection-string availability at runtime.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	Server Server
	Store  Store
	Redis  Redis
	Auth   Auth
	SMTP   SMTP
}

type Server struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
}

type Store struct {
	Backend string // memory or mongo
	MongoURI string
	MongoDB  string
	// Timeout bounds every store call so a backend outage surfaces as a
	// retryable error instead of a hung request.
	Timeout time.Duration
}

type Redis struct {
	Addr     string // empty disables the rate limiter
	Password string
	DB       int
}

type Auth struct {
	// TokenSecret is the symmetric key the session-token MAC is computed with.
	TokenSecret []byte
	TokenTTL    time.Duration
	CodeTTL     time.Duration
}

type SMTP struct {
	Host     string // empty selects the log-only code sender
	Port     string
	User     string
	Password string
}

// Load reads configuration from environment variables.
// A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: Server{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Store: Store{
			Backend:  getEnv("STORE_BACKEND", BackendMemory),
			MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDB:  getEnv("MONGODB_DB", "papertrade"),
			Timeout:  getDurationEnv("STORE_TIMEOUT", 3*time.Second),
		},
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: Auth{
			TokenSecret: []byte(getEnv("TOKEN_SECRET", "")),
			TokenTTL:    getDurationEnv("TOKEN_TTL", 7*24*time.Hour),
			CodeTTL:     getDurationEnv("CODE_TTL", 10*time.Minute),
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
		},
	}

	if len(cfg.Auth.TokenSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least 32 bytes, got %d", len(cfg.Auth.TokenSecret))
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendMongo:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendMongo, cfg.Store.Backend)
	}

	return cfg, nil
}

// IsDevelopment returns true if the environment is set to dev
func (c *Server) IsDevelopment() bool {
	return c.Env == "dev"
}

// RateLimitEnabled reports whether a Redis-backed rate limiter should be wired.
func (c *Redis) RateLimitEnabled() bool {
	return c.Addr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
