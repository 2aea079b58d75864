package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every process-wide setting. It is loaded once in main and
// handed to constructors; nothing reads the environment after startup.
type Config struct {
	Env          string
	Port         string
	APIPrefix    string
	PostgresURL  string
	JWTSecret    string
	TokenTTL     time.Duration
	KafkaBrokers []string
	OTLPEndpoint string
}

// Production reports whether internal error detail must be hidden from
// responses.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and the process environment. POSTGRES_URL
// and JWT_SECRET are required; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getenv("ENV", "development"),
		Port:         getenv("PORT", "8080"),
		APIPrefix:    getenv("API_PREFIX", "/api/v1"),
		PostgresURL:  os.Getenv("POSTGRES_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     7 * 24 * time.Hour,
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
