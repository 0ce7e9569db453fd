package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Chat platform credential (held for the relay front-end, not dialed in-process)
	BotToken string `envconfig:"BOT_TOKEN"`

	// API-SPORTS provider
	SportsAPIKey      string        `envconfig:"SPORTS_API_KEY" required:"true"`
	FootballBaseURL   string        `envconfig:"SPORTS_FOOTBALL_BASE_URL" default:"https://v3.football.api-sports.io"`
	TennisBaseURL     string        `envconfig:"SPORTS_TENNIS_BASE_URL" default:"https://v1.tennis.api-sports.io"`
	BasketballBaseURL string        `envconfig:"SPORTS_BASKETBALL_BASE_URL" default:"https://v1.basketball.api-sports.io"`
	SportsAPITimeout  time.Duration `envconfig:"SPORTS_API_TIMEOUT" default:"10s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"matchday"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"matchday_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Access control
	AdminUserIDs []int64 `envconfig:"ADMIN_USER_IDS"`
	InviteOnly   bool    `envconfig:"INVITE_ONLY" default:"true"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP server
	ServerPort  int `envconfig:"SERVER_PORT" default:"8080"`
	MetricsPort int `envconfig:"METRICS_PORT" default:"9090"`

	// Reconciliation
	EnableScheduler       bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	ReconcileCron         string `envconfig:"RECONCILE_CRON" default:"0 3 * * *"`
	ReconcilePollInterval int    `envconfig:"RECONCILE_POLL_INTERVAL" default:"300"`

	// Provider rate limiting (requests per second)
	APIRateLimit  int `envconfig:"API_RATE_LIMIT" default:"10"`
	APIBurstLimit int `envconfig:"API_BURST_LIMIT" default:"20"`

	// Caching TTL (in seconds)
	CacheTTLAccuracy int `envconfig:"CACHE_TTL_ACCURACY" default:"600"` // 10 minutes
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SportsAPIKey == "" {
		return fmt.Errorf("SPORTS_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.InviteOnly && len(c.AdminUserIDs) == 0 && c.AppEnv == "production" {
		return fmt.Errorf("ADMIN_USER_IDS must be set when INVITE_ONLY is enabled in production")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsAdmin reports whether the given Telegram ID is in the configured admin list
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
