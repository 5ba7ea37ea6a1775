package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIToken = "dev-token"

// Config holds the runtime settings of the server and the CLI.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	DBConnStr string

	APIToken string
	GRPCAddr string
	HTTPAddr string

	PriceSourceURL    string
	PriceFetchTimeout time.Duration
	// PriceCacheTTL is how long a price snapshot is reused; negative disables the cache.
	PriceCacheTTL time.Duration

	LogLevel string
}

// Load reads the given .env files (or ./.env when none is given) and then the
// process environment. Variables already set in the environment win.
// Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	fetchTimeout, err := getEnvAsDuration("PRICE_FETCH_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvAsDuration("PRICE_CACHE_TTL", 60*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBConnStr:         dbConnStr(),
		APIToken:          getEnv("API_TOKEN", defaultAPIToken),
		GRPCAddr:          getEnv("GRPC_ADDR", ":8080"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8081"),
		PriceSourceURL:    getEnv("PRICE_SOURCE_URL", ""),
		PriceFetchTimeout: fetchTimeout,
		PriceCacheTTL:     cacheTTL,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg, cfg.Validate()
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	if c.DBConnStr == "" {
		return errors.New("database connection string is empty")
	}
	if c.APIToken == "" {
		return errors.New("API_TOKEN must not be empty")
	}
	if c.GRPCAddr == "" && c.HTTPAddr == "" {
		return errors.New("at least one of GRPC_ADDR and HTTP_ADDR is required")
	}
	if c.PriceFetchTimeout <= 0 {
		return fmt.Errorf("PRICE_FETCH_TIMEOUT must be positive, got %s", c.PriceFetchTimeout)
	}
	return nil
}

// UsesDefaultToken reports whether the development API token is in effect.
func (c *Config) UsesDefaultToken() bool {
	return c.APIToken == defaultAPIToken
}

// dbConnStr prefers DB_CONN_STR and otherwise builds a DSN from the
// individual DB_* variables (Docker friendly).
func dbConnStr() string {
	if s := os.Getenv("DB_CONN_STR"); s != "" {
		return s
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "goldfolio"),
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
