package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"arbscan/pkg/types"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Platform APIs
	PolymarketBaseURL string
	KalshiBaseURL     string
	ManifoldBaseURL   string
	FetchTimeout      time.Duration
	DefaultLimit      int
	MaxLimit          int

	// Matching
	MatchThreshold     float64
	MaxDateDiffDays    int
	MinMatchCharLength int

	// Fees (per-platform multiplicative rate on the price paid)
	FeePolymarket decimal.Decimal
	FeeKalshi     decimal.Decimal
	FeeManifold   decimal.Decimal

	// Arbitrage
	MinROI       decimal.Decimal
	MinLiquidity decimal.Decimal

	// Alerts
	AlertsEnabled      bool
	WebhookURL         string
	MinProfitPercent   decimal.Decimal
	MinProfitAmount    decimal.Decimal
	AlertCooldown      time.Duration
	MaxAlertsPerMinute int

	// Scheduler
	ScanInterval  time.Duration
	StatsInterval time.Duration

	// Jobs
	JobMaxAttempts    int
	JobInitialBackoff time.Duration

	// Redis (cache/queue backing)
	RedisHost     string
	RedisPort     string
	RedisPassword string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Platform API defaults
		PolymarketBaseURL: getEnvOrDefault("POLYMARKET_API_URL", "https://gamma-api.polymarket.com"),
		KalshiBaseURL:     getEnvOrDefault("KALSHI_API_URL", "https://api.elections.kalshi.com/trade-api/v2"),
		ManifoldBaseURL:   getEnvOrDefault("MANIFOLD_API_URL", "https://api.manifold.markets/v0"),
		FetchTimeout:      getDurationOrDefault("FETCH_TIMEOUT", 10*time.Second),
		DefaultLimit:      getIntOrDefault("FETCH_DEFAULT_LIMIT", 50),
		MaxLimit:          getIntOrDefault("FETCH_MAX_LIMIT", 200),

		// Matching defaults
		MatchThreshold:     getFloat64OrDefault("MATCH_THRESHOLD", 0.60),
		MaxDateDiffDays:    getIntOrDefault("MATCH_MAX_DATE_DIFF_DAYS", 30),
		MinMatchCharLength: getIntOrDefault("MATCH_MIN_CHAR_LENGTH", 3),

		// Fee defaults
		FeePolymarket: getDecimalOrDefault("FEE_POLYMARKET", "0.02"),
		FeeKalshi:     getDecimalOrDefault("FEE_KALSHI", "0.07"),
		FeeManifold:   getDecimalOrDefault("FEE_MANIFOLD", "0"),

		// Arbitrage defaults
		MinROI:       getDecimalOrDefault("ARB_MIN_ROI", "0.01"),
		MinLiquidity: getDecimalOrDefault("ARB_MIN_LIQUIDITY", "100"),

		// Alert defaults
		AlertsEnabled:      getBoolOrDefault("ALERTS_ENABLED", false),
		WebhookURL:         os.Getenv("ALERT_WEBHOOK_URL"),
		MinProfitPercent:   getDecimalOrDefault("ALERT_MIN_PROFIT_PERCENT", "5"),
		MinProfitAmount:    getDecimalOrDefault("ALERT_MIN_PROFIT_AMOUNT", "10"),
		AlertCooldown:      getDurationOrDefault("ALERT_COOLDOWN", 10*time.Minute),
		MaxAlertsPerMinute: getIntOrDefault("ALERT_MAX_PER_MINUTE", 30),

		// Scheduler defaults
		ScanInterval:  getDurationOrDefault("SCAN_INTERVAL", 60*time.Second),
		StatsInterval: getDurationOrDefault("STATS_INTERVAL", 30*time.Second),

		// Job defaults
		JobMaxAttempts:    getIntOrDefault("JOB_MAX_ATTEMPTS", 3),
		JobInitialBackoff: getDurationOrDefault("JOB_INITIAL_BACKOFF", 2*time.Second),

		// Redis defaults
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.PolymarketBaseURL == "" || c.KalshiBaseURL == "" || c.ManifoldBaseURL == "" {
		return fmt.Errorf("platform API URLs cannot be empty")
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 1.0 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0,1], got %f", c.MatchThreshold)
	}

	if c.DefaultLimit <= 0 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("FETCH_DEFAULT_LIMIT must be in [1,%d], got %d", c.MaxLimit, c.DefaultLimit)
	}

	if c.JobMaxAttempts < 1 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1, got %d", c.JobMaxAttempts)
	}

	for name, fee := range map[string]decimal.Decimal{
		"FEE_POLYMARKET": c.FeePolymarket,
		"FEE_KALSHI":     c.FeeKalshi,
		"FEE_MANIFOLD":   c.FeeManifold,
	} {
		if fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be in [0,1), got %s", name, fee)
		}
	}

	return nil
}

// FeeRates returns the immutable per-platform fee table.
func (c *Config) FeeRates() map[types.Platform]decimal.Decimal {
	return map[types.Platform]decimal.Decimal{
		types.PlatformPolymarket: c.FeePolymarket,
		types.PlatformKalshi:     c.FeeKalshi,
		types.PlatformManifold:   c.FeeManifold,
	}
}

// RedisAddr returns the host:port address of the cache/queue backing store.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getDecimalOrDefault(key string, defaultValue string) decimal.Decimal {
	fallback := decimal.RequireFromString(defaultValue)

	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return fallback
	}

	return d
}
