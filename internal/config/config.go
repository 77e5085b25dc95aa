package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" required:"true"`

	// Redis (sync lock and job queue)
	RedisAddr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Authentication (api-server only)
	JWTSecret         string        `env:"JWT_SECRET"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" default:"15m"`
	AdminUsername     string        `env:"ADMIN_USERNAME" default:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`

	// Catalog
	JikanAPIURL        string        `env:"JIKAN_API_URL" default:"https://api.jikan.moe/v4"`
	JikanRatePerSecond float64       `env:"JIKAN_RATE_PER_SECOND" default:"1"`
	JikanHTTPTimeout   time.Duration `env:"JIKAN_HTTP_TIMEOUT" default:"30s"`

	// Sync
	SyncPagesPerSeason int           `env:"SYNC_PAGES_PER_SEASON" default:"3"`
	SyncSchedule       string        `env:"SYNC_SCHEDULE" default:"@daily"`
	SyncLockTTL        time.Duration `env:"SYNC_LOCK_TTL" default:"30m"`

	// Translation
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	TranslateTarget string `env:"TRANSLATE_TARGET" default:"es"`

	// File Storage
	MediaPath string `env:"MEDIA_PATH" default:"/app/data/media"`

	// Workers
	EnrichConcurrency int `env:"ENRICH_CONCURRENCY" default:"2"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogFile   string `env:"LOG_FILE"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load(".env")

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisAddr, "REDIS_ADDR", "localhost:6379"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvString(&config.JWTSecret, "JWT_SECRET", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.AdminUsername, "ADMIN_USERNAME", "admin"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.AdminPasswordHash, "ADMIN_PASSWORD_HASH", ""); err != nil {
		return nil, err
	}

	// Catalog
	if err := loadEnvString(&config.JikanAPIURL, "JIKAN_API_URL", "https://api.jikan.moe/v4"); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.JikanRatePerSecond, "JIKAN_RATE_PER_SECOND", 1); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.JikanHTTPTimeout, "JIKAN_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	// Sync
	if err := loadEnvInt(&config.SyncPagesPerSeason, "SYNC_PAGES_PER_SEASON", 3); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SyncSchedule, "SYNC_SCHEDULE", "@daily"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SyncLockTTL, "SYNC_LOCK_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	// Translation
	if err := loadEnvString(&config.GeminiAPIKey, "GEMINI_API_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.GeminiModel, "GEMINI_MODEL", "gemini-2.5-flash"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.TranslateTarget, "TRANSLATE_TARGET", "es"); err != nil {
		return nil, err
	}

	// File Storage
	if err := loadEnvString(&config.MediaPath, "MEDIA_PATH", "/app/data/media"); err != nil {
		return nil, err
	}

	// Workers
	if err := loadEnvInt(&config.EnrichConcurrency, "ENRICH_CONCURRENCY", 2); err != nil {
		return nil, err
	}

	// Logging
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFile, "LOG_FILE", ""); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate checks the settings every binary relies on.
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.JikanRatePerSecond <= 0 || c.JikanRatePerSecond > 3 {
		errors = append(errors, "JIKAN_RATE_PER_SECOND must be in (0, 3]")
	}
	if c.SyncPagesPerSeason < 1 {
		errors = append(errors, "SYNC_PAGES_PER_SEASON must be at least 1")
	}
	if c.EnrichConcurrency < 1 {
		errors = append(errors, "ENRICH_CONCURRENCY must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// ValidateAPI adds the checks only the admin API needs.
func (c *Config) ValidateAPI() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errors []string

	// Validate JWT secret length (should be at least 32 characters for security)
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}
	if c.AdminPasswordHash == "" {
		errors = append(errors, "ADMIN_PASSWORD_HASH is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// TranslationEnabled reports whether synopses are sent to Gemini.
func (c *Config) TranslationEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
