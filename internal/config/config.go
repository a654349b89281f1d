package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Reasoning model
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Issue store (Postgres preferred, SQLite for development)
	DatabaseURL string
	SQLitePath  string

	// Redis (rate limiting, optional)
	RedisURL string

	// External-call guards
	OracleTimeout     time.Duration
	StoreTimeout      time.Duration
	MaxTurnIterations int
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        os.Getenv("SQLITE_PATH"),
		RedisURL:          os.Getenv("REDIS_URL"),
		OracleTimeout:     getEnvDuration("ORACLE_TIMEOUT", 60*time.Second),
		StoreTimeout:      getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		MaxTurnIterations: getEnvInt("MAX_TURN_ITERATIONS", 8),
	}

	if cfg.Env == "production" && cfg.OpenAIAPIKey == "" {
		panic("OPENAI_API_KEY is required in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasStore returns true when an issue store backend is configured.
// Absence of a store is a valid degraded mode: searches return no rows.
func (c *Config) HasStore() bool {
	return c.DatabaseURL != "" || c.SQLitePath != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
