package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// BaseCurrency anchors all stored exchange rates.
	BaseCurrency string

	// Materializer loop settings.
	MaterializerInterval time.Duration
	MaterializerBudget   time.Duration

	// Exchange rate refresh settings.
	RateRefreshInterval time.Duration
	RateSourceURL       string

	// Requests per minute allowed per client IP.
	RateLimitRPM int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "finflow-backend")
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("MATERIALIZER_INTERVAL", "1h")
	viper.SetDefault("MATERIALIZER_BUDGET", "5m")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "6h")
	viper.SetDefault("RATE_SOURCE_URL", "")
	viper.SetDefault("RATE_LIMIT_RPM", 300)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" && cfg.IsProduction {
		slog.Warn("JWT_SECRET is using the insecure default in production")
	}

	var err error
	cfg.JWTExpiryDuration, err = parseDuration("JWT_EXPIRY_DURATION", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.BaseCurrency = strings.ToUpper(viper.GetString("BASE_CURRENCY"))
	if len(cfg.BaseCurrency) != 3 {
		return nil, fmt.Errorf("invalid BASE_CURRENCY %q: must be a 3-letter code", cfg.BaseCurrency)
	}

	cfg.MaterializerInterval, err = parseDuration("MATERIALIZER_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.MaterializerBudget, err = parseDuration("MATERIALIZER_BUDGET", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RateRefreshInterval, err = parseDuration("RATE_REFRESH_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.RateSourceURL = viper.GetString("RATE_SOURCE_URL")
	if cfg.RateSourceURL == "" {
		slog.Warn("RATE_SOURCE_URL not set, exchange rate refresh is disabled")
	}

	cfg.RateLimitRPM = viper.GetInt64("RATE_LIMIT_RPM")
	if cfg.RateLimitRPM <= 0 {
		cfg.RateLimitRPM = 300
	}

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid value for %s (%q): must be positive", key, raw)
	}
	return d, nil
}
